package survey

import (
	"sync"

	"github.com/google/uuid"

	"github.com/urbanbyte/pesquisa/internal/directory"
)

// Manager mantém no máximo uma sessão ativa por agente de campo.
type Manager struct {
	mu       sync.Mutex
	store    *directory.Store
	sessions map[uuid.UUID]*Session
}

// NewManager cria o registro de sessões sobre o diretório informado.
func NewManager(store *directory.Store) *Manager {
	return &Manager{store: store, sessions: make(map[uuid.UUID]*Session)}
}

// Get devolve a sessão do usuário, criando-a na etapa inicial se preciso.
func (m *Manager) Get(user directory.User) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[user.ID]; ok {
		return session
	}

	session := NewSession(m.store, user)
	m.sessions[user.ID] = session
	return session
}

// Drop descarta a sessão do usuário, se existir. Usado no logout.
func (m *Manager) Drop(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
