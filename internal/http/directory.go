package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/urbanbyte/pesquisa/internal/directory"
	httpmiddleware "github.com/urbanbyte/pesquisa/internal/http/middleware"
)

// handleCreateClient registra uma organização cliente (super-admin).
func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	client, err := h.store.AddClient(actor, payload.Name, payload.Email)
	if err != nil {
		WriteDirectoryError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"client": client})
}

// handleListClients devolve todas as organizações (super-admin).
func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"clients": h.store.Clients()})
}

// handleCreateSurveyPerson registra um agente de campo para o cliente da rota.
func (h *Handler) handleCreateSurveyPerson(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	clientID, ok := scopedClient(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	person, err := h.store.AddSurveyPerson(actor, payload.Name, payload.Email, clientID)
	if err != nil {
		WriteDirectoryError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"survey_person": person})
}

// handleListSurveyPersons devolve os agentes do cliente da rota.
func (h *Handler) handleListSurveyPersons(w http.ResponseWriter, r *http.Request) {
	clientID, ok := scopedClient(w, r)
	if !ok {
		return
	}

	persons := h.store.ClientSurveyPersons(clientID)
	WriteJSON(w, http.StatusOK, map[string]any{"survey_persons": persons})
}

// handleCreateQuestion registra uma pergunta para o cliente da rota.
func (h *Handler) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	clientID, ok := scopedClient(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text    string `json:"text"`
		Type    string `json:"type"`
		Options string `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	question, err := h.store.AddQuestion(actor, payload.Text, directory.QuestionType(payload.Type), payload.Options, clientID)
	if err != nil {
		WriteDirectoryError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"question": question})
}

// handleListQuestions devolve as perguntas do cliente da rota.
func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	clientID, ok := scopedClient(w, r)
	if !ok {
		return
	}

	questions := h.store.ClientQuestions(clientID)
	WriteJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// handleCreateSubmission registra um envio direto (survey-person). A rota
// aceita o payload completo montado pelo dispositivo; a validação de
// respostas contra perguntas vivas acontece no diretório.
func (h *Handler) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var payload directory.SubmissionInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	submission, err := h.store.SubmitSurvey(actor, payload)
	if err != nil {
		WriteDirectoryError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"submission": submission})
}

// handleListSubmissions devolve envios visíveis ao papel do usuário.
func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"submissions": h.store.Submissions(actor)})
}

func scopedClient(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	clientID, err := uuid.Parse(httpmiddleware.GetScopedClient(r.Context()))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "cliente inválido", nil)
		return uuid.Nil, false
	}
	return clientID, true
}
