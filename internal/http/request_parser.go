// Package http serves the fintrack web pages.
//
// This file holds the form parsing helpers shared by the handlers. A form
// field that is absent altogether fails the request with 400; a field that is
// present but invalid is a validation problem the page reports inline.
package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// maxFormBytes caps the size of a posted form.
const maxFormBytes = 64 << 10

// ParseFormOrFail parses the request form and returns an error response on
// failure. Returns nil on success.
func ParseFormOrFail(w http.ResponseWriter, r *http.Request) *ResponseBuilder {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrorResponse(http.StatusRequestEntityTooLarge, "Formulário muito grande.")
		}
		return BadRequestError("Formato de requisição inválido.")
	}
	return nil
}

// RequireFields parses the form and returns the sanitized values of fields.
// Any field missing from the posted form yields a 400 response.
func RequireFields(w http.ResponseWriter, r *http.Request, fields ...string) (map[string]string, *ResponseBuilder) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		return nil, resp
	}
	values := make(map[string]string, len(fields))
	var missing []string
	for _, f := range fields {
		if _, ok := r.PostForm[f]; !ok {
			missing = append(missing, f)
			continue
		}
		values[f] = sanitizeInput(r.PostForm.Get(f))
	}
	if len(missing) > 0 {
		return nil, BadRequestError("Campos obrigatórios ausentes: " + strings.Join(missing, ", "))
	}
	return values, nil
}

// OptionalField returns the sanitized value of a field that may be absent.
func OptionalField(form url.Values, field string) string {
	return sanitizeInput(form.Get(field))
}
