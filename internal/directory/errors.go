package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailure é retornado quando o email de login não existe.
	ErrAuthFailure = errors.New("credenciais inválidas")
	// ErrPermissionDenied indica papel ou vínculo de cliente incompatível.
	ErrPermissionDenied = errors.New("acesso negado")
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicateEmail indica email já registrado no diretório.
	ErrDuplicateEmail = errors.New("email já cadastrado")
)

// ValidationError descreve um campo obrigatório ausente ou malformado.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
