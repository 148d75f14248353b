package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/urbanbyte/pesquisa/internal/directory"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// WriteDirectoryError traduz falhas tipadas do diretório para HTTP.
func WriteDirectoryError(w http.ResponseWriter, err error) {
	var validation *directory.ValidationError
	switch {
	case errors.Is(err, directory.ErrAuthFailure):
		WriteError(w, http.StatusUnauthorized, "AUTH", "credenciais inválidas", nil)
	case errors.Is(err, directory.ErrPermissionDenied):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
	case errors.Is(err, directory.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	case errors.Is(err, directory.ErrDuplicateEmail):
		WriteError(w, http.StatusConflict, "DUPLICATE_EMAIL", "email já cadastrado", nil)
	case errors.As(err, &validation):
		WriteError(w, http.StatusBadRequest, "VALIDATION", validation.Error(), map[string]any{"field": validation.Field})
	default:
		log.Error().Err(err).Msg("directory error")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
