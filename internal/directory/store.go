package directory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/urbanbyte/pesquisa/internal/util"
)

// SeedAdmin descreve o super-admin criado junto com o diretório.
type SeedAdmin struct {
	Name  string
	Email string
}

// Store é a fonte única de identidade, escopo de autorização e conteúdo de
// pesquisa. Todo o estado vive em memória: uma instância por processo,
// criada em main e entregue por referência aos handlers.
//
// As regras de visibilidade entre papéis são aplicadas aqui, nunca na
// camada HTTP: toda operação de escrita recebe o usuário que a executa e
// valida papel e vínculo de cliente antes de mutar qualquer conjunto.
type Store struct {
	mu sync.RWMutex

	users        []User
	usersByID    map[uuid.UUID]int
	usersByEmail map[string]int

	clients     []Client
	clientsByID map[uuid.UUID]int

	persons []SurveyPerson

	questions     []Question
	questionsByID map[uuid.UUID]int

	submissions []Submission
}

// New cria o diretório já semeado com o super-admin fixo.
func New(seed SeedAdmin) *Store {
	s := &Store{
		usersByID:     make(map[uuid.UUID]int),
		usersByEmail:  make(map[string]int),
		clientsByID:   make(map[uuid.UUID]int),
		questionsByID: make(map[uuid.UUID]int),
	}

	s.insertUser(User{
		ID:        util.NewID(),
		Email:     seed.Email,
		Name:      seed.Name,
		Role:      RoleSuperAdmin,
		CreatedAt: time.Now().UTC(),
	})

	return s
}

// Login localiza o usuário pelo email exato (sensível a maiúsculas).
// Não existe senha neste modelo: a identidade é estabelecida pelo email
// e materializada em tokens pela camada de autenticação.
func (s *Store) Login(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.usersByEmail[email]
	if !ok {
		return User{}, ErrAuthFailure
	}
	return s.users[idx], nil
}

// GetUser devolve o usuário pelo id.
func (s *Store) GetUser(id uuid.UUID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.usersByID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.users[idx], nil
}

// AddClient registra uma organização cliente. Exclusivo do super-admin.
// O cliente entra simultaneamente no conjunto de clientes e no de usuários
// (papel client-admin) com o mesmo id, email e nome.
func (s *Store) AddClient(actor User, name, email string) (Client, error) {
	if actor.Role != RoleSuperAdmin {
		return Client{}, ErrPermissionDenied
	}
	if err := util.RequireString(name, "name"); err != nil {
		return Client{}, invalidField("name", "obrigatório")
	}
	if err := util.ValidateEmail(email); err != nil {
		return Client{}, invalidField("email", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return Client{}, ErrDuplicateEmail
	}

	id := util.NewID()
	now := time.Now().UTC()

	client := Client{ID: id, Name: name, Email: email, CreatedAt: now}
	s.clientsByID[id] = len(s.clients)
	s.clients = append(s.clients, client)

	clientID := id
	s.insertUser(User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      RoleClientAdmin,
		ClientID:  &clientID,
		CreatedAt: now,
	})

	return client, nil
}

// Clients devolve todas as organizações em ordem de criação.
func (s *Store) Clients() []Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Client, len(s.clients))
	copy(out, s.clients)
	return out
}

// AddSurveyPerson registra um agente de campo para o cliente informado.
// Somente o client-admin do próprio cliente pode criar agentes.
func (s *Store) AddSurveyPerson(actor User, name, email string, clientID uuid.UUID) (SurveyPerson, error) {
	if actor.Role != RoleClientAdmin || actor.ClientID == nil || *actor.ClientID != clientID {
		return SurveyPerson{}, ErrPermissionDenied
	}
	if err := util.RequireString(name, "name"); err != nil {
		return SurveyPerson{}, invalidField("name", "obrigatório")
	}
	if err := util.ValidateEmail(email); err != nil {
		return SurveyPerson{}, invalidField("email", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clientsByID[clientID]; !ok {
		return SurveyPerson{}, ErrNotFound
	}
	if _, exists := s.usersByEmail[email]; exists {
		return SurveyPerson{}, ErrDuplicateEmail
	}

	id := util.NewID()
	now := time.Now().UTC()

	person := SurveyPerson{ID: id, Name: name, Email: email, ClientID: clientID, CreatedAt: now}
	s.persons = append(s.persons, person)

	ownClient := clientID
	s.insertUser(User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      RoleSurveyPerson,
		ClientID:  &ownClient,
		CreatedAt: now,
	})

	return person, nil
}

// ClientSurveyPersons devolve os agentes do cliente em ordem de criação.
func (s *Store) ClientSurveyPersons(clientID uuid.UUID) []SurveyPerson {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SurveyPerson
	for _, p := range s.persons {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

// AddQuestion registra uma pergunta para o cliente informado. Para o tipo
// "options" as alternativas vêm de texto livre separado por vírgulas; para
// o tipo "text" qualquer texto de alternativas é ignorado.
func (s *Store) AddQuestion(actor User, text string, qtype QuestionType, rawOptions string, clientID uuid.UUID) (Question, error) {
	if actor.Role != RoleClientAdmin || actor.ClientID == nil || *actor.ClientID != clientID {
		return Question{}, ErrPermissionDenied
	}
	if err := util.RequireString(text, "text"); err != nil {
		return Question{}, invalidField("text", "obrigatório")
	}

	var options []string
	switch qtype {
	case QuestionText:
		options = nil
	case QuestionOptions:
		options = ParseOptions(rawOptions)
		if len(options) == 0 {
			return Question{}, invalidField("options", "pelo menos uma opção é necessária")
		}
	default:
		return Question{}, invalidField("type", "tipo desconhecido")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clientsByID[clientID]; !ok {
		return Question{}, ErrNotFound
	}

	question := Question{
		ID:        util.NewID(),
		ClientID:  clientID,
		Text:      text,
		Type:      qtype,
		Options:   options,
		CreatedAt: time.Now().UTC(),
	}
	s.questionsByID[question.ID] = len(s.questions)
	s.questions = append(s.questions, question)

	return cloneQuestion(question), nil
}

// ClientQuestions devolve as perguntas do cliente em ordem de criação.
func (s *Store) ClientQuestions(clientID uuid.UUID) []Question {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Question
	for _, q := range s.questions {
		if q.ClientID == clientID {
			out = append(out, cloneQuestion(q))
		}
	}
	return out
}

// SubmitSurvey registra uma pesquisa concluída em nome do agente de campo.
// Toda chave de resposta precisa referenciar uma pergunta viva do cliente
// do agente; respostas órfãs invalidam o envio inteiro.
func (s *Store) SubmitSurvey(actor User, input SubmissionInput) (Submission, error) {
	if actor.Role != RoleSurveyPerson || actor.ClientID == nil {
		return Submission{}, ErrPermissionDenied
	}
	if err := util.RequireString(input.Settings.Constitution, "constitution"); err != nil {
		return Submission{}, invalidField("settings.constitution", "obrigatório")
	}
	if err := util.RequireString(input.Settings.Area, "area"); err != nil {
		return Submission{}, invalidField("settings.area", "obrigatório")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clientID := *actor.ClientID
	answers := make(map[uuid.UUID]string, len(input.Answers))
	for questionID, value := range input.Answers {
		idx, ok := s.questionsByID[questionID]
		if !ok || s.questions[idx].ClientID != clientID {
			return Submission{}, invalidField("answers", "pergunta desconhecida: "+questionID.String())
		}
		answers[questionID] = value
	}

	now := time.Now()
	submission := Submission{
		ID:          util.NewID(),
		UserID:      actor.ID,
		ClientID:    clientID,
		Settings:    input.Settings,
		Answers:     answers,
		Location:    input.Location,
		SubmittedAt: now.UTC(),
		Date:        now.Format("02/01/2006"),
		Time:        now.Format("15:04:05"),
	}
	s.submissions = append(s.submissions, submission)

	return cloneSubmission(submission), nil
}

// Submissions devolve envios visíveis ao usuário: super-admin enxerga tudo,
// client-admin os do próprio cliente e survey-person apenas os seus.
func (s *Store) Submissions(actor User) []Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Submission
	for _, sub := range s.submissions {
		switch actor.Role {
		case RoleSuperAdmin:
		case RoleClientAdmin:
			if actor.ClientID == nil || sub.ClientID != *actor.ClientID {
				continue
			}
		case RoleSurveyPerson:
			if sub.UserID != actor.ID {
				continue
			}
		default:
			continue
		}
		out = append(out, cloneSubmission(sub))
	}
	return out
}

func (s *Store) insertUser(u User) {
	s.usersByID[u.ID] = len(s.users)
	s.usersByEmail[u.Email] = len(s.users)
	s.users = append(s.users, u)
}

func cloneQuestion(q Question) Question {
	if len(q.Options) > 0 {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

func cloneSubmission(sub Submission) Submission {
	answers := make(map[uuid.UUID]string, len(sub.Answers))
	for k, v := range sub.Answers {
		answers[k] = v
	}
	sub.Answers = answers
	return sub
}
