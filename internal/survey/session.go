package survey

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/urbanbyte/pesquisa/internal/directory"
)

// State identifica a etapa corrente da sessão de coleta.
type State string

const (
	StateSettings  State = "settings"
	StateSurvey    State = "survey"
	StateCompleted State = "completed"
)

var (
	// ErrSettingsIncomplete indica constitution ou area vazios.
	ErrSettingsIncomplete = errors.New("constitution e area são obrigatórios")
	// ErrNotInSettings bloqueia um novo começo sem reset: settings -> survey
	// é a única saída da etapa inicial e o reset é o único caminho de volta.
	ErrNotInSettings = errors.New("sessão já iniciada")
	// ErrNotInSurvey indica operação fora da etapa de perguntas.
	ErrNotInSurvey = errors.New("sessão não está na etapa de perguntas")
	// ErrUnknownQuestion indica resposta para pergunta fora do questionário.
	ErrUnknownQuestion = errors.New("pergunta desconhecida")
	// ErrNoQuestions indica questionário vazio: só o reset é permitido.
	ErrNoQuestions = errors.New("nenhuma pergunta disponível")
	// ErrIncomplete bloqueia envio antes de todas as respostas.
	ErrIncomplete = errors.New("todas as perguntas precisam de resposta")
)

// Session conduz um agente de campo por exatamente um ciclo de envio:
// settings -> survey -> completed, com reset de qualquer etapa de volta ao
// início. O questionário é congelado na entrada da etapa survey; perguntas
// criadas depois só aparecem no próximo ciclo.
type Session struct {
	mu    sync.Mutex
	store *directory.Store
	user  directory.User

	state     State
	settings  directory.SurveySettings
	answers   map[uuid.UUID]string
	location  directory.Location
	questions []directory.Question
	lastRun   *directory.Submission
}

// NewSession cria a sessão na etapa inicial de configuração.
func NewSession(store *directory.Store, user directory.User) *Session {
	return &Session{
		store:   store,
		user:    user,
		state:   StateSettings,
		answers: make(map[uuid.UUID]string),
	}
}

// Begin dispara settings -> survey. Exige constitution e area preenchidos,
// captura a localização pela capacidade externa (que sempre resolve, ainda
// que com o sentinela) e congela o questionário do cliente.
func (s *Session) Begin(ctx context.Context, settings directory.SurveySettings, locator Locator) error {
	s.mu.Lock()
	if s.state != StateSettings {
		s.mu.Unlock()
		return ErrNotInSettings
	}
	s.mu.Unlock()

	if strings.TrimSpace(settings.Constitution) == "" || strings.TrimSpace(settings.Area) == "" {
		return ErrSettingsIncomplete
	}
	if locator == nil {
		locator = Unlocated()
	}

	// Ponto único de suspensão da sessão: a captura é aguardada antes da
	// transição se concretizar.
	location := locator.Locate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A captura acontece fora do lock; o estado é reconferido aqui.
	if s.state != StateSettings {
		return ErrNotInSettings
	}
	if s.user.ClientID == nil {
		return directory.ErrPermissionDenied
	}

	s.settings = settings
	s.location = location
	s.answers = make(map[uuid.UUID]string)
	s.questions = s.store.ClientQuestions(*s.user.ClientID)
	s.state = StateSurvey
	return nil
}

// Answer registra ou sobrescreve a resposta de uma única pergunta.
func (s *Session) Answer(questionID uuid.UUID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSurvey {
		return ErrNotInSurvey
	}
	if len(s.questions) == 0 {
		return ErrNoQuestions
	}
	if !s.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}

	s.answers[questionID] = value
	return nil
}

// Progress devolve o percentual de perguntas com resposta não vazia.
// Questionário vazio resulta em 0.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

// NoQuestions informa se a sessão entrou na etapa survey sem perguntas.
func (s *Session) NoQuestions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateSurvey && len(s.questions) == 0
}

// Submit dispara survey -> completed. Só é permitido com 100% de progresso
// e só transiciona se o diretório aceitar o envio.
func (s *Session) Submit(ctx context.Context) (directory.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSurvey {
		return directory.Submission{}, ErrNotInSurvey
	}
	if len(s.questions) == 0 {
		return directory.Submission{}, ErrNoQuestions
	}
	if s.progressLocked() < 100 {
		return directory.Submission{}, ErrIncomplete
	}

	answers := make(map[uuid.UUID]string, len(s.answers))
	for id, value := range s.answers {
		answers[id] = value
	}

	submission, err := s.store.SubmitSurvey(s.user, directory.SubmissionInput{
		Settings: s.settings,
		Answers:  answers,
		Location: s.location,
	})
	if err != nil {
		return directory.Submission{}, err
	}

	s.lastRun = &submission
	s.state = StateCompleted
	return submission, nil
}

// Reset volta à etapa inicial de qualquer estado, descartando respostas,
// configurações e localização. É o único caminho para um segundo ciclo.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateSettings
	s.settings = directory.SurveySettings{}
	s.answers = make(map[uuid.UUID]string)
	s.location = directory.UnknownLocation()
	s.questions = nil
}

// View é o retrato da sessão exposto pela API.
type View struct {
	State       State                    `json:"state"`
	Settings    directory.SurveySettings `json:"settings"`
	Questions   []directory.Question     `json:"questions"`
	Answers     map[uuid.UUID]string     `json:"answers"`
	Location    directory.Location       `json:"location"`
	Progress    float64                  `json:"progress"`
	Answered    int                      `json:"answered"`
	NoQuestions bool                     `json:"no_questions"`
	LastRun     *directory.Submission    `json:"last_submission,omitempty"`
}

// Snapshot devolve uma cópia consistente do estado corrente.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]directory.Question, len(s.questions))
	copy(questions, s.questions)

	answers := make(map[uuid.UUID]string, len(s.answers))
	for id, value := range s.answers {
		answers[id] = value
	}

	return View{
		State:       s.state,
		Settings:    s.settings,
		Questions:   questions,
		Answers:     answers,
		Location:    s.location,
		Progress:    s.progressLocked(),
		Answered:    s.answeredLocked(),
		NoQuestions: s.state == StateSurvey && len(s.questions) == 0,
		LastRun:     s.lastRun,
	}
}

func (s *Session) progressLocked() float64 {
	total := len(s.questions)
	if total == 0 {
		return 0
	}
	return float64(s.answeredLocked()) / float64(total) * 100
}

func (s *Session) answeredLocked() int {
	answered := 0
	for _, value := range s.answers {
		if strings.TrimSpace(value) != "" {
			answered++
		}
	}
	return answered
}

func (s *Session) hasQuestion(id uuid.UUID) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}
