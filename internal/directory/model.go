package directory

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role define o papel de um usuário na plataforma.
type Role string

const (
	RoleSuperAdmin   Role = "super-admin"
	RoleClientAdmin  Role = "client-admin"
	RoleSurveyPerson Role = "survey-person"
)

// QuestionType define o formato de resposta de uma pergunta.
type QuestionType string

const (
	QuestionText    QuestionType = "text"
	QuestionOptions QuestionType = "options"
)

// User é a identidade única de qualquer pessoa que acessa a plataforma.
// ClientID é preenchido para todos os papéis exceto super-admin.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	ClientID  *uuid.UUID `json:"client_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Client representa uma organização cliente. Todo Client também existe no
// conjunto de usuários como client-admin, com o mesmo id, email e nome.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SurveyPerson é o agente de campo vinculado a um cliente. Também é
// registrado no conjunto de usuários com papel survey-person.
type SurveyPerson struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ClientID  uuid.UUID `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Question é uma pergunta de pesquisa pertencente a um cliente.
// Options só carrega valores quando Type é "options".
type Question struct {
	ID        uuid.UUID    `json:"id"`
	ClientID  uuid.UUID    `json:"client_id"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Options   []string     `json:"options"`
	CreatedAt time.Time    `json:"created_at"`
}

// SurveySettings descreve o contexto geográfico informado antes da coleta.
type SurveySettings struct {
	Constitution string `json:"constitution"`
	Area         string `json:"area"`
	BoothNumber  string `json:"booth_number,omitempty"`
}

// Coordinate é uma coordenada que pode estar indisponível. No JSON o valor
// é um número ou a string literal "N/A".
type Coordinate struct {
	Value float64
	Valid bool
}

const coordinateNA = `"N/A"`

// MarshalJSON serializa número ou o sentinela "N/A".
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte(coordinateNA), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON aceita número, "N/A" ou null.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" || string(data) == coordinateNA {
		*c = Coordinate{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		// Qualquer outro texto vira o sentinela em vez de derrubar o payload.
		*c = Coordinate{}
		return nil
	}
	*c = Coordinate{Value: v, Valid: true}
	return nil
}

// Location é o par de coordenadas capturado no início da sessão.
type Location struct {
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// UnknownLocation devolve o par sentinela usado quando a captura falha.
func UnknownLocation() Location {
	return Location{}
}

// Known informa se ambas as coordenadas foram capturadas.
func (l Location) Known() bool {
	return l.Latitude.Valid && l.Longitude.Valid
}

// Submission é o registro imutável de uma pesquisa concluída.
type Submission struct {
	ID          uuid.UUID            `json:"id"`
	UserID      uuid.UUID            `json:"user_id"`
	ClientID    uuid.UUID            `json:"client_id"`
	Settings    SurveySettings       `json:"settings"`
	Answers     map[uuid.UUID]string `json:"answers"`
	Location    Location             `json:"location"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Date        string               `json:"date"`
	Time        string               `json:"time"`
}

// SubmissionInput carrega os dados montados pela sessão de coleta.
type SubmissionInput struct {
	Settings SurveySettings       `json:"settings"`
	Answers  map[uuid.UUID]string `json:"answers"`
	Location Location             `json:"location"`
}

// ParseOptions separa a lista de opções digitada como texto livre:
// divide por vírgula, apara espaços e descarta entradas vazias,
// preservando a ordem restante.
func ParseOptions(raw string) []string {
	var options []string
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			options = append(options, piece)
		}
	}
	return options
}
