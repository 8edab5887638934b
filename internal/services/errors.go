package services

import (
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var (
	ErrNoUser             = errors.New("no authenticated user in context")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError is returned when form input does not describe a valid
// record. Its Message is meant to be shown to the user as is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Message returns the pt-BR text shown next to the form.
func (e *ValidationError) Message() string {
	return UserMessage(e.Err)
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// UserMessage maps domain and service errors to the text the UI shows.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Usuário ou senha incorretos."
	case errors.Is(err, storage.ErrUserExists):
		return "Usuário já existe."
	case errors.Is(err, core.ErrInvalidUsername):
		return "Nome de usuário inválido: use de 3 a 32 letras, números, ponto, hífen ou sublinhado."
	case errors.Is(err, core.ErrEmptyPassword):
		return "Informe uma senha."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Valor inválido."
	case errors.Is(err, core.ErrInvalidDate):
		return "Data inválida."
	case errors.Is(err, core.ErrInvalidType):
		return "Tipo inválido."
	case errors.Is(err, core.ErrUnknownCategory):
		return "Categoria inválida para o tipo selecionado."
	case errors.Is(err, core.ErrEmptyDescription):
		return "Informe uma descrição."
	case errors.Is(err, core.ErrDescriptionLong):
		return "Descrição muito longa (máximo de 200 caracteres)."
	case errors.Is(err, core.ErrEmptyName):
		return "Informe o nome do ativo."
	default:
		return "Não foi possível concluir a operação."
	}
}
