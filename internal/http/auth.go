package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/urbanbyte/pesquisa/internal/directory"
	httpmiddleware "github.com/urbanbyte/pesquisa/internal/http/middleware"
)

// handleLogin autentica pelo email exato e emite o par de tokens.
// Falha de login nunca inicia sessão: nenhum token é emitido no erro.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	user, err := h.store.Login(payload.Email)
	if err != nil {
		WriteDirectoryError(w, err)
		return
	}

	h.writeTokenPair(w, http.StatusOK, user)
}

// handleRefresh troca um refresh token válido por um novo par. Rotação
// obrigatória: o token usado é invalidado no ato.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	userID, err := h.sessions.Redeem(payload.RefreshToken)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "refresh token inválido", nil)
		return
	}

	user, err := h.store.GetUser(userID)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "refresh token inválido", nil)
		return
	}

	h.writeTokenPair(w, http.StatusOK, user)
}

// handleLogout revoga o refresh token e descarta a sessão de coleta ativa.
// Idempotente: revogar um token já revogado continua devolvendo 204.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.RefreshToken != "" {
		h.sessions.Revoke(payload.RefreshToken)
	}

	if subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context())); err == nil {
		h.surveySessions.Drop(subject)
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleMe devolve o usuário autenticado.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) writeTokenPair(w http.ResponseWriter, status int, user directory.User) {
	clientID := ""
	if user.ClientID != nil {
		clientID = user.ClientID.String()
	}

	access, _, err := h.jwt.GenerateAccessToken(user.ID.String(), string(user.Role), clientID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}

	refresh, err := h.sessions.Issue(user.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}

	WriteJSON(w, status, map[string]any{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    int(h.jwt.AccessTTL().Seconds()),
	})
}

// currentUser resolve o usuário autenticado a partir do subject do token.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (directory.User, bool) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return directory.User{}, false
	}

	user, err := h.store.GetUser(subject)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return directory.User{}, false
	}

	return user, true
}
