package survey

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/urbanbyte/pesquisa/internal/directory"
	httpmiddleware "github.com/urbanbyte/pesquisa/internal/http/middleware"
)

// Handler orquestra as rotas da sessão de coleta.
type Handler struct {
	store    *directory.Store
	sessions *Manager
}

// NewHandler cria o handler sobre o diretório e o registro de sessões.
func NewHandler(store *directory.Store, sessions *Manager) *Handler {
	return &Handler{store: store, sessions: sessions}
}

// RegisterRoutes adiciona as rotas da sessão no router autenticado.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/survey/session", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Post("/settings", h.handleBegin)
		r.Put("/answers/{questionID}", h.handleAnswer)
		r.Post("/submit", h.handleSubmit)
		r.Post("/reset", h.handleReset)
	})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	user, ok := h.surveyPerson(w, r)
	if !ok {
		return
	}

	session := h.sessions.Get(user)
	writeJSON(w, http.StatusOK, map[string]any{"session": session.Snapshot()})
}

func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	user, ok := h.surveyPerson(w, r)
	if !ok {
		return
	}

	var payload struct {
		Constitution string              `json:"constitution"`
		Area         string              `json:"area"`
		BoothNumber  string              `json:"booth_number"`
		Location     *directory.Location `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	// A posição vem do dispositivo do agente; ausência vira o sentinela.
	locator := Unlocated()
	if payload.Location != nil {
		locator = FixedLocator(*payload.Location)
	}

	session := h.sessions.Get(user)
	settings := directory.SurveySettings{
		Constitution: payload.Constitution,
		Area:         payload.Area,
		BoothNumber:  payload.BoothNumber,
	}
	if err := session.Begin(ctx, settings, locator); err != nil {
		handleSessionError(w, err)
		return
	}

	logRequest(ctx, "POST /survey/session/settings", user.ID, start)
	writeJSON(w, http.StatusOK, map[string]any{"session": session.Snapshot()})
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	user, ok := h.surveyPerson(w, r)
	if !ok {
		return
	}

	questionID, err := uuid.Parse(chi.URLParam(r, "questionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "pergunta inválida", nil)
		return
	}

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	session := h.sessions.Get(user)
	if err := session.Answer(questionID, payload.Value); err != nil {
		handleSessionError(w, err)
		return
	}

	logRequest(ctx, "PUT /survey/session/answers", user.ID, start)
	writeJSON(w, http.StatusOK, map[string]any{
		"progress": session.Progress(),
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	user, ok := h.surveyPerson(w, r)
	if !ok {
		return
	}

	session := h.sessions.Get(user)
	submission, err := session.Submit(ctx)
	if err != nil {
		handleSessionError(w, err)
		return
	}

	logRequest(ctx, "POST /survey/session/submit", user.ID, start)
	writeJSON(w, http.StatusCreated, map[string]any{"submission": submission})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	user, ok := h.surveyPerson(w, r)
	if !ok {
		return
	}

	session := h.sessions.Get(user)
	session.Reset()

	logRequest(ctx, "POST /survey/session/reset", user.ID, start)
	writeJSON(w, http.StatusOK, map[string]any{"session": session.Snapshot()})
}

// surveyPerson resolve o usuário autenticado e exige papel survey-person.
func (h *Handler) surveyPerson(w http.ResponseWriter, r *http.Request) (directory.User, bool) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return directory.User{}, false
	}

	user, err := h.store.GetUser(subject)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return directory.User{}, false
	}

	if user.Role != directory.RoleSurveyPerson {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a agentes de campo", nil)
		return directory.User{}, false
	}

	return user, true
}

func handleSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSettingsIncomplete):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, ErrNotInSettings):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrNotInSurvey):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrNoQuestions):
		writeError(w, http.StatusConflict, "NO_QUESTIONS", err.Error(), nil)
	case errors.Is(err, ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrIncomplete):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, directory.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("survey handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func logRequest(ctx context.Context, label string, userID uuid.UUID, start time.Time) {
	logger := log.Ctx(ctx)
	if logger == nil {
		logger = &log.Logger
	}
	reqID := chimiddleware.GetReqID(ctx)
	logger.Info().Str("request_id", reqID).Str("user_id", userID.String()).Str("label", label).Dur("duration", time.Since(start)).Msg("survey_request")
}

// Helpers de resposta JSON compatíveis com o resto do projeto.
type successEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

type errorEnvelope struct {
	Data  any            `json:"data"`
	Error *errorResponse `json:"error"`
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Data: payload, Error: nil})
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Data: nil, Error: &errorResponse{Code: code, Message: message, Details: details}})
}
