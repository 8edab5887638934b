package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseBuilderBasic(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	NewResponse().
		Status(http.StatusAccepted).
		Header("X-Test", "1").
		Body([]byte("ok")).
		Write(w, r)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Test"))
	assert.Equal(t, "ok", w.Body.String())
}

func TestResponseBuilderRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/transactions", nil)

	resp := Redirect("/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode())
	resp.Write(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestErrorResponseEscapes(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	BadRequestError("<b>campo</b>").Write(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "&lt;b&gt;campo&lt;/b&gt;")
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	NewResponse().Attachment("text/csv", "a.csv").Body([]byte("x")).Write(w, r)

	assert.Equal(t, `attachment; filename="a.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}
