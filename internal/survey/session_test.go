package survey

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/urbanbyte/pesquisa/internal/directory"
)

type fixture struct {
	store     *directory.Store
	client    directory.Client
	admin     directory.User
	agent     directory.User
	questions []directory.Question
}

func newFixture(t *testing.T, questionCount int) *fixture {
	t.Helper()

	store := directory.New(directory.SeedAdmin{Name: "Super Admin", Email: "superadmin@survey.com"})
	root, err := store.Login("superadmin@survey.com")
	if err != nil {
		t.Fatalf("login super-admin: %v", err)
	}

	client, err := store.AddClient(root, "Acme", "a@x.com")
	if err != nil {
		t.Fatalf("add client: %v", err)
	}
	admin, err := store.Login("a@x.com")
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}

	if _, err := store.AddSurveyPerson(admin, "Bob", "b@x.com", client.ID); err != nil {
		t.Fatalf("add survey person: %v", err)
	}
	agent, err := store.Login("b@x.com")
	if err != nil {
		t.Fatalf("login agent: %v", err)
	}

	f := &fixture{store: store, client: client, admin: admin, agent: agent}
	for i := 0; i < questionCount; i++ {
		q, err := store.AddQuestion(admin, "Color?", directory.QuestionOptions, "Red, Blue", client.ID)
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		f.questions = append(f.questions, q)
	}
	return f
}

func settings() directory.SurveySettings {
	return directory.SurveySettings{Constitution: "urban", Area: "Downtown"}
}

func TestBeginRequiresSettings(t *testing.T) {
	f := newFixture(t, 1)
	session := NewSession(f.store, f.agent)

	err := session.Begin(context.Background(), directory.SurveySettings{Area: "Downtown"}, nil)
	if !errors.Is(err, ErrSettingsIncomplete) {
		t.Fatalf("expected ErrSettingsIncomplete got %v", err)
	}
	err = session.Begin(context.Background(), directory.SurveySettings{Constitution: "urban", Area: "  "}, nil)
	if !errors.Is(err, ErrSettingsIncomplete) {
		t.Fatalf("expected ErrSettingsIncomplete got %v", err)
	}
	if session.Snapshot().State != StateSettings {
		t.Fatalf("guard reprovado não transiciona")
	}
}

func TestBeginCapturesLocation(t *testing.T) {
	f := newFixture(t, 1)
	session := NewSession(f.store, f.agent)

	loc := directory.Location{
		Latitude:  directory.Coordinate{Value: -7.9, Valid: true},
		Longitude: directory.Coordinate{Value: -36.1, Valid: true},
	}
	if err := session.Begin(context.Background(), settings(), FixedLocator(loc)); err != nil {
		t.Fatalf("begin: %v", err)
	}

	view := session.Snapshot()
	if view.State != StateSurvey {
		t.Fatalf("expected survey state got %s", view.State)
	}
	if !view.Location.Known() {
		t.Fatalf("expected captured location, got %+v", view.Location)
	}

	// Sem locator o fallback é o sentinela, nunca uma falha.
	other := NewSession(f.store, f.agent)
	if err := other.Begin(context.Background(), settings(), nil); err != nil {
		t.Fatalf("begin sem locator: %v", err)
	}
	if other.Snapshot().Location.Known() {
		t.Fatalf("expected sentinel location")
	}
}

func TestBeginOnlyFromSettings(t *testing.T) {
	f := newFixture(t, 1)
	session := NewSession(f.store, f.agent)

	if err := session.Begin(context.Background(), settings(), nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := session.Answer(f.questions[0].ID, "Red"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// Recomeçar no meio da coleta descartaria respostas em andamento.
	if err := session.Begin(context.Background(), settings(), nil); !errors.Is(err, ErrNotInSettings) {
		t.Fatalf("expected ErrNotInSettings got %v", err)
	}
	if got := session.Progress(); got != 100 {
		t.Fatalf("begin reprovado não pode descartar respostas, got %v", got)
	}

	if _, err := session.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Só o reset abre um segundo ciclo de envio.
	if err := session.Begin(context.Background(), settings(), nil); !errors.Is(err, ErrNotInSettings) {
		t.Fatalf("expected ErrNotInSettings got %v", err)
	}
	if view := session.Snapshot(); view.State != StateCompleted {
		t.Fatalf("begin reprovado não transiciona, got %s", view.State)
	}

	session.Reset()
	if err := session.Begin(context.Background(), settings(), nil); err != nil {
		t.Fatalf("begin após reset: %v", err)
	}
}

func TestProgress(t *testing.T) {
	f := newFixture(t, 2)
	session := NewSession(f.store, f.agent)

	if got := session.Progress(); got != 0 {
		t.Fatalf("progress antes de começar deve ser 0, got %v", got)
	}

	if err := session.Begin(context.Background(), settings(), nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if got := session.Progress(); got != 0 {
		t.Fatalf("sem respostas, progress 0, got %v", got)
	}

	if err := session.Answer(f.questions[0].ID, "Red"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := session.Progress(); got != 50 {
		t.Fatalf("expected 50 got %v", got)
	}

	// Respostas só de espaços não contam.
	if err := session.Answer(f.questions[1].ID, "   "); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := session.Progress(); got != 50 {
		t.Fatalf("resposta em branco não conta, got %v", got)
	}

	if err := session.Answer(f.questions[1].ID, "Blue"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := session.Progress(); got != 100 {
		t.Fatalf("expected 100 got %v", got)
	}
}

func TestAnswerGuards(t *testing.T) {
	f := newFixture(t, 1)
	session := NewSession(f.store, f.agent)

	if err := session.Answer(f.questions[0].ID, "Red"); !errors.Is(err, ErrNotInSurvey) {
		t.Fatalf("expected ErrNotInSurvey got %v", err)
	}

	if err := session.Begin(context.Background(), settings(), nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := session.Answer(uuid.New(), "x"); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion got %v", err)
	}
}

func TestSubmitRequiresFullProgress(t *testing.T) {
	f := newFixture(t, 2)
	session := NewSession(f.store, f.agent)

	if err := session.Begin(context.Background(), settings(), nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := session.Answer(f.questions[0].ID, "Red"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if _, err := session.Submit(context.Background()); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete got %v", err)
	}
	if session.Snapshot().State != StateSurvey {
		t.Fatalf("envio reprovado não transiciona")
	}
}

func TestNoQuestionsCondition(t *testing.T) {
	f := newFixture(t, 0)
	session := NewSession(f.store, f.agent)

	if err := session.Begin(context.Background(), settings(), nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !session.NoQuestions() {
		t.Fatalf("expected no-questions condition")
	}
	if _, err := session.Submit(context.Background()); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("envio nunca é permitido sem perguntas, got %v", err)
	}

	// Única saída é o reset.
	session.Reset()
	if session.Snapshot().State != StateSettings {
		t.Fatalf("reset volta à configuração")
	}
}

func TestFullCycleAndReset(t *testing.T) {
	f := newFixture(t, 1)
	session := NewSession(f.store, f.agent)

	if err := session.Begin(context.Background(), settings(), nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := session.Answer(f.questions[0].ID, "Red"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := session.Progress(); got != 100 {
		t.Fatalf("expected 100 before submit, got %v", got)
	}

	submission, err := session.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submission.ClientID != f.client.ID {
		t.Fatalf("expected clientID %s got %s", f.client.ID, submission.ClientID)
	}
	if submission.Answers[f.questions[0].ID] != "Red" {
		t.Fatalf("expected answer Red got %q", submission.Answers[f.questions[0].ID])
	}
	if session.Snapshot().State != StateCompleted {
		t.Fatalf("expected completed state")
	}

	// completed só aceita reset; um novo envio exige novo ciclo.
	if _, err := session.Submit(context.Background()); !errors.Is(err, ErrNotInSurvey) {
		t.Fatalf("expected ErrNotInSurvey got %v", err)
	}

	session.Reset()
	view := session.Snapshot()
	if view.State != StateSettings || len(view.Answers) != 0 || view.Location.Known() {
		t.Fatalf("reset não limpou a sessão: %+v", view)
	}
	if got := session.Progress(); got != 0 {
		t.Fatalf("progress após reset deve ser 0, got %v", got)
	}

	// O registro no diretório permanece após o reset.
	if got := f.store.Submissions(f.agent); len(got) != 1 {
		t.Fatalf("expected 1 submission got %d", len(got))
	}
}

func TestManagerReusesSessions(t *testing.T) {
	f := newFixture(t, 1)
	manager := NewManager(f.store)

	first := manager.Get(f.agent)
	if second := manager.Get(f.agent); second != first {
		t.Fatalf("manager deve reutilizar a sessão do usuário")
	}

	manager.Drop(f.agent.ID)
	if third := manager.Get(f.agent); third == first {
		t.Fatalf("drop descarta a sessão anterior")
	}
}
