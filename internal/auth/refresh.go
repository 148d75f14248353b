package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidRefresh é retornado quando o token de refresh é inválido ou expirado.
	ErrInvalidRefresh = errors.New("refresh token inválido")
)

// GenerateRefreshToken cria token aleatório seguro e seu hash armazenável.
func GenerateRefreshToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	hashed = HashRefreshToken(raw)
	return raw, hashed, nil
}

// HashRefreshToken produz hash SHA-256 base64.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

type refreshEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// SessionStore guarda refresh tokens em memória, indexados pelo hash.
// O estado vive no próprio processo: encerrar a API revoga todas as sessões.
type SessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]refreshEntry
}

// NewSessionStore cria o armazém de sessões com TTL fixo.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, entries: make(map[string]refreshEntry)}
}

// Issue emite um refresh token novo para o usuário informado.
func (s *SessionStore) Issue(userID uuid.UUID) (string, error) {
	raw, hashed, err := GenerateRefreshToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked()
	s.entries[hashed] = refreshEntry{userID: userID, expiresAt: time.Now().Add(s.ttl)}
	return raw, nil
}

// Redeem consome um refresh token válido e devolve o usuário dono.
// O token é invalidado no ato: rotação obrigatória a cada uso.
func (s *SessionStore) Redeem(raw string) (uuid.UUID, error) {
	hashed := HashRefreshToken(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[hashed]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, hashed)
		return uuid.Nil, ErrInvalidRefresh
	}

	delete(s.entries, hashed)
	return entry.userID, nil
}

// Revoke descarta o refresh token, se existir. Idempotente.
func (s *SessionStore) Revoke(raw string) {
	hashed := HashRefreshToken(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, hashed)
}

func (s *SessionStore) purgeLocked() {
	now := time.Now()
	for hash, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, hash)
		}
	}
}
