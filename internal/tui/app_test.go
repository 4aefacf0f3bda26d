package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/integration/artifact"
	"github.com/futig/coverletter-backend/internal/pkg/formatter"
	"github.com/futig/coverletter-backend/internal/pkg/validator"
	"github.com/futig/coverletter-backend/internal/usecase/session"
	"go.uber.org/zap"
)

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, string) (string, error) {
	return "Dear hiring team", nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	return newPacedTestApp(t, 0)
}

func newPacedTestApp(t *testing.T, promptDelay time.Duration) *App {
	t.Helper()

	script := &entity.Script{
		Prompts: []entity.Prompt{
			{Key: "name", Text: "Name?"},
			{Key: "job", Text: "Job?"},
		},
		RequestTemplate: "{{.Answers.name}} {{.Answers.job}} {{.Date}}",
		Announcement:    "Here's your download link:",
		Document:        entity.DocumentKeys{NameKey: "name", Closing: "Sincerely,"},
	}
	uc := session.NewUsecase(
		script,
		stubGenerator{},
		formatter.NewRenderer(formatter.NewMarkdownFormatter()),
		artifact.NewStore(time.Minute),
		validator.NewValidator(100),
		config.SessionConfig{TTL: time.Minute, PromptDelay: promptDelay},
		zap.NewNop(),
	)

	return NewApp(context.Background(), uc, t.TempDir())
}

// nextTranscript drains one message from the subscription through the model
func nextTranscript(t *testing.T, a *App) tea.Cmd {
	t.Helper()

	done := make(chan tea.Msg, 1)
	go func() { done <- a.waitForMessage() }()

	select {
	case msg := <-done:
		_, cmd := a.Update(msg)
		return cmd
	case <-time.After(2 * time.Second):
		t.Fatal("no transcript message")
		return nil
	}
}

func (a *App) answer(t *testing.T, text string) tea.Msg {
	t.Helper()

	a.input.SetValue(text)
	cmd := a.submit()
	if cmd == nil {
		t.Fatalf("submit %q returned no command", text)
	}
	return cmd()
}

func TestConversationSavesLetter(t *testing.T) {
	a := newTestApp(t)
	defer a.close()

	a.Update(a.startSession())
	if a.sessionID == "" || len(a.messages) != 1 || a.messages[0].Text != "Name?" {
		t.Fatalf("unexpected start state: %q %+v", a.sessionID, a.messages)
	}

	a.Update(a.answer(t, "Ada"))
	nextTranscript(t, a) // Ada
	nextTranscript(t, a) // Job?
	if !strings.Contains(a.status, "Question 2 of 2") {
		t.Fatalf("status = %q", a.status)
	}

	a.Update(a.answer(t, "Engineer"))
	if !a.generating {
		t.Fatal("expected generating after the last answer")
	}

	a.Update(a.finalize())
	if !a.done || a.err != nil {
		t.Fatalf("finalize: done=%v err=%v", a.done, a.err)
	}

	nextTranscript(t, a) // Engineer
	nextTranscript(t, a) // announcement
	for _, m := range a.messages {
		if m.IsArtifact() {
			t.Fatal("artifact arrived too early")
		}
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- a.waitForMessage() }()
	msg := <-done
	tm, ok := msg.(transcriptMsg)
	if !ok || !tm.msg.IsArtifact() {
		t.Fatalf("expected artifact message, got %#v", msg)
	}
	a.Update(tm)
	a.Update(a.saveArtifact(tm.msg.Handle)())

	if a.savedPath == "" {
		t.Fatalf("letter not saved, err = %v", a.err)
	}
	data, err := os.ReadFile(a.savedPath)
	if err != nil {
		t.Fatalf("read saved letter: %v", err)
	}
	if !strings.Contains(string(data), "Dear hiring team") {
		t.Fatalf("unexpected letter: %s", data)
	}
	if filepath.Ext(a.savedPath) != ".md" {
		t.Fatalf("unexpected extension: %s", a.savedPath)
	}

	if !strings.Contains(a.View(), "esc to quit") {
		t.Fatal("finished view must hide the input")
	}
}

func TestBlankAnswerIsNoOp(t *testing.T) {
	a := newTestApp(t)
	defer a.close()

	a.Update(a.startSession())
	a.Update(a.answer(t, "   "))

	if a.err != nil || len(a.messages) != 1 {
		t.Fatalf("blank answer changed the model: err=%v messages=%d", a.err, len(a.messages))
	}
}

func TestRejectedAnswerStaysInInput(t *testing.T) {
	a := newPacedTestApp(t, time.Hour)
	defer a.close()

	a.Update(a.startSession())

	a.Update(a.answer(t, "Ada"))
	if a.err != nil || a.input.Value() != "" {
		t.Fatalf("accepted answer must clear the input: err=%v value=%q", a.err, a.input.Value())
	}

	a.Update(a.answer(t, "Engineer"))
	if !errors.Is(a.err, entity.ErrPromptPending) {
		t.Fatalf("expected ErrPromptPending, got %v", a.err)
	}
	if a.input.Value() != "Engineer" {
		t.Fatalf("rejected answer was dropped, input = %q", a.input.Value())
	}
}

func TestSubmitBeforeStartIsIgnored(t *testing.T) {
	a := newTestApp(t)

	if cmd := a.submit(); cmd != nil {
		t.Fatal("submit without a session must be ignored")
	}
}

func TestRenderTranscript(t *testing.T) {
	out := renderTranscript([]entity.Message{
		entity.NewTextMessage(entity.OriginAsker, "Name?"),
		entity.NewTextMessage(entity.OriginRespondent, "Ada"),
		entity.NewArtifactMessage("artifact:abc"),
	}, 0)

	for _, want := range []string{"Name?", "› Ada", "abc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("transcript %q misses %q", out, want)
		}
	}
}
