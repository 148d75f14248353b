package util

import "github.com/google/uuid"

// NewID gera um UUID v4 para identificadores de entidades.
func NewID() uuid.UUID {
	return uuid.New()
}
