package directory

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func newTestStore() *Store {
	return New(SeedAdmin{Name: "Super Admin", Email: "superadmin@survey.com"})
}

func superAdmin(t *testing.T, s *Store) User {
	t.Helper()
	admin, err := s.Login("superadmin@survey.com")
	if err != nil {
		t.Fatalf("login super-admin: %v", err)
	}
	return admin
}

func seedClient(t *testing.T, s *Store) (Client, User) {
	t.Helper()
	client, err := s.AddClient(superAdmin(t, s), "Acme", "a@x.com")
	if err != nil {
		t.Fatalf("add client: %v", err)
	}
	admin, err := s.Login("a@x.com")
	if err != nil {
		t.Fatalf("login client admin: %v", err)
	}
	return client, admin
}

func TestLogin(t *testing.T) {
	s := newTestStore()

	admin, err := s.Login("superadmin@survey.com")
	if err != nil {
		t.Fatalf("expected seeded super-admin, got %v", err)
	}
	if admin.Role != RoleSuperAdmin {
		t.Fatalf("expected role %q got %q", RoleSuperAdmin, admin.Role)
	}
	if admin.ClientID != nil {
		t.Fatalf("super-admin não deve ter client_id")
	}

	if _, err := s.Login("nobody@x.com"); !errors.Is(err, ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure got %v", err)
	}

	// Email é comparado de forma exata, sensível a maiúsculas.
	if _, err := s.Login("Superadmin@survey.com"); !errors.Is(err, ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure for case mismatch, got %v", err)
	}
}

func TestAddClientDualRegistration(t *testing.T) {
	s := newTestStore()

	client, err := s.AddClient(superAdmin(t, s), "Acme", "a@x.com")
	if err != nil {
		t.Fatalf("add client: %v", err)
	}

	user, err := s.Login(client.Email)
	if err != nil {
		t.Fatalf("client admin deve existir no conjunto de usuários: %v", err)
	}
	if user.ID != client.ID || user.Email != client.Email || user.Name != client.Name {
		t.Fatalf("dual registration divergente: user=%+v client=%+v", user, client)
	}
	if user.Role != RoleClientAdmin {
		t.Fatalf("expected role %q got %q", RoleClientAdmin, user.Role)
	}
	if user.ClientID == nil || *user.ClientID != client.ID {
		t.Fatalf("client admin deve apontar para o próprio cliente")
	}

	clients := s.Clients()
	if len(clients) != 1 || clients[0].ID != client.ID {
		t.Fatalf("expected exatamente um cliente, got %d", len(clients))
	}
}

func TestAddClientAuthorization(t *testing.T) {
	s := newTestStore()
	_, clientAdmin := seedClient(t, s)

	if _, err := s.AddClient(clientAdmin, "Intruso", "i@x.com"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied got %v", err)
	}
}

func TestAddClientValidation(t *testing.T) {
	s := newTestStore()
	admin := superAdmin(t, s)

	if _, err := s.AddClient(admin, "", "a@x.com"); err == nil {
		t.Fatalf("expected validation error for empty name")
	}
	if _, err := s.AddClient(admin, "Acme", "not-an-email"); err == nil {
		t.Fatalf("expected validation error for malformed email")
	}

	if _, err := s.AddClient(admin, "Acme", "a@x.com"); err != nil {
		t.Fatalf("add client: %v", err)
	}
	if _, err := s.AddClient(admin, "Outra", "a@x.com"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail got %v", err)
	}
	if _, err := s.AddClient(admin, "Outra", "superadmin@survey.com"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("emails são únicos entre todos os papéis, got %v", err)
	}
}

func TestAddSurveyPerson(t *testing.T) {
	s := newTestStore()
	client, clientAdmin := seedClient(t, s)

	person, err := s.AddSurveyPerson(clientAdmin, "Bob", "b@x.com", client.ID)
	if err != nil {
		t.Fatalf("add survey person: %v", err)
	}
	if person.ClientID != client.ID {
		t.Fatalf("expected clientID %s got %s", client.ID, person.ClientID)
	}

	user, err := s.Login("b@x.com")
	if err != nil {
		t.Fatalf("survey person deve existir no conjunto de usuários: %v", err)
	}
	if user.Role != RoleSurveyPerson || user.ID != person.ID {
		t.Fatalf("dual registration divergente: %+v", user)
	}

	// Client-admin só cria agentes para o próprio cliente.
	other, err := s.AddClient(superAdmin(t, s), "Outra", "o@x.com")
	if err != nil {
		t.Fatalf("add client: %v", err)
	}
	if _, err := s.AddSurveyPerson(clientAdmin, "Eva", "e@x.com", other.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied got %v", err)
	}
	if _, err := s.AddSurveyPerson(superAdmin(t, s), "Eva", "e@x.com", client.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("super-admin não cria agentes, got %v", err)
	}
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"A, B ,,C", []string{"A", "B", "C"}},
		{"Red, Blue", []string{"Red", "Blue"}},
		{" , ,", nil},
		{"", nil},
		{"único", []string{"único"}},
	}

	for _, tc := range tests {
		got := ParseOptions(tc.raw)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseOptions(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestAddQuestion(t *testing.T) {
	s := newTestStore()
	client, clientAdmin := seedClient(t, s)

	question, err := s.AddQuestion(clientAdmin, "Color?", QuestionOptions, "Red, Blue", client.ID)
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if !reflect.DeepEqual(question.Options, []string{"Red", "Blue"}) {
		t.Fatalf("expected parsed options, got %v", question.Options)
	}

	// Perguntas de texto ignoram qualquer texto de alternativas.
	text, err := s.AddQuestion(clientAdmin, "Opinião?", QuestionText, "A, B", client.ID)
	if err != nil {
		t.Fatalf("add text question: %v", err)
	}
	if len(text.Options) != 0 {
		t.Fatalf("pergunta de texto não deve ter opções: %v", text.Options)
	}

	if _, err := s.AddQuestion(clientAdmin, "Vazia?", QuestionOptions, " , ,", client.ID); err == nil {
		t.Fatalf("expected validation error for empty options")
	}
	if _, err := s.AddQuestion(clientAdmin, "", QuestionText, "", client.ID); err == nil {
		t.Fatalf("expected validation error for empty text")
	}
	if _, err := s.AddQuestion(clientAdmin, "Tipo?", QuestionType("radio"), "", client.ID); err == nil {
		t.Fatalf("expected validation error for unknown type")
	}
}

func TestClientQuestionsOrderAndScope(t *testing.T) {
	s := newTestStore()
	client, clientAdmin := seedClient(t, s)

	first, _ := s.AddQuestion(clientAdmin, "Primeira?", QuestionText, "", client.ID)
	second, _ := s.AddQuestion(clientAdmin, "Segunda?", QuestionText, "", client.ID)

	questions := s.ClientQuestions(client.ID)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions got %d", len(questions))
	}
	if questions[0].ID != first.ID || questions[1].ID != second.ID {
		t.Fatalf("perguntas fora da ordem de criação")
	}

	if got := s.ClientQuestions(uuid.New()); len(got) != 0 {
		t.Fatalf("cliente desconhecido não tem perguntas: %v", got)
	}
}

func TestSubmitSurvey(t *testing.T) {
	s := newTestStore()
	client, clientAdmin := seedClient(t, s)

	question, err := s.AddQuestion(clientAdmin, "Color?", QuestionOptions, "Red, Blue", client.ID)
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if _, err := s.AddSurveyPerson(clientAdmin, "Bob", "b@x.com", client.ID); err != nil {
		t.Fatalf("add survey person: %v", err)
	}
	bob, err := s.Login("b@x.com")
	if err != nil {
		t.Fatalf("login bob: %v", err)
	}

	input := SubmissionInput{
		Settings: SurveySettings{Constitution: "urban", Area: "Downtown"},
		Answers:  map[uuid.UUID]string{question.ID: "Red"},
		Location: UnknownLocation(),
	}

	submission, err := s.SubmitSurvey(bob, input)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submission.ClientID != client.ID || submission.UserID != bob.ID {
		t.Fatalf("submission com vínculos errados: %+v", submission)
	}
	if submission.Answers[question.ID] != "Red" {
		t.Fatalf("expected answer Red got %q", submission.Answers[question.ID])
	}
	if submission.Date == "" || submission.Time == "" || submission.SubmittedAt.IsZero() {
		t.Fatalf("carimbos de tempo ausentes: %+v", submission)
	}

	// Resposta para pergunta inexistente invalida o envio inteiro.
	bad := input
	bad.Answers = map[uuid.UUID]string{uuid.New(): "x"}
	if _, err := s.SubmitSurvey(bob, bad); err == nil {
		t.Fatalf("expected validation error for unknown question")
	}

	// Configuração incompleta também.
	bad = input
	bad.Settings.Area = "  "
	if _, err := s.SubmitSurvey(bob, bad); err == nil {
		t.Fatalf("expected validation error for empty area")
	}

	if _, err := s.SubmitSurvey(clientAdmin, input); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("somente survey-person envia, got %v", err)
	}
}

func TestSubmissionsVisibility(t *testing.T) {
	s := newTestStore()
	client, clientAdmin := seedClient(t, s)

	question, _ := s.AddQuestion(clientAdmin, "Q?", QuestionText, "", client.ID)
	_, _ = s.AddSurveyPerson(clientAdmin, "Bob", "b@x.com", client.ID)
	bob, _ := s.Login("b@x.com")

	input := SubmissionInput{
		Settings: SurveySettings{Constitution: "rural", Area: "Norte"},
		Answers:  map[uuid.UUID]string{question.ID: "ok"},
	}
	if _, err := s.SubmitSurvey(bob, input); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got := s.Submissions(superAdmin(t, s)); len(got) != 1 {
		t.Fatalf("super-admin enxerga tudo, got %d", len(got))
	}
	if got := s.Submissions(clientAdmin); len(got) != 1 {
		t.Fatalf("client-admin enxerga o próprio cliente, got %d", len(got))
	}
	if got := s.Submissions(bob); len(got) != 1 {
		t.Fatalf("survey-person enxerga os próprios envios, got %d", len(got))
	}

	if _, err := s.AddClient(superAdmin(t, s), "Outra", "o@x.com"); err != nil {
		t.Fatalf("add client: %v", err)
	}
	otherAdmin, _ := s.Login("o@x.com")
	if got := s.Submissions(otherAdmin); len(got) != 0 {
		t.Fatalf("client-admin não enxerga outros clientes, got %d", len(got))
	}
}
