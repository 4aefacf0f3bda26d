package sequencer_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/usecase/sequencer"
)

func TestComposeIsDeterministic(t *testing.T) {
	c, err := sequencer.NewComposer(twoPromptScript())
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}

	answers := entity.AnswerSet{"name": "Ada", "job": "Engineer"}
	now := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)

	first, err := c.Compose(answers, now)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	second, _ := c.Compose(answers, now)
	if first != second {
		t.Fatalf("compose is not deterministic: %q vs %q", first, second)
	}

	want := "Write a letter for Ada applying to Engineer on January 9, 2024."
	if first != want {
		t.Fatalf("got %q want %q", first, want)
	}
}

func TestComposeConditionalHint(t *testing.T) {
	script := twoPromptScript()
	script.RequestTemplate = `{{.Answers.name}} {{.Date}} {{.Answers.job}}{{if contains .Answers.job " at "}} (company named){{end}}`
	c, err := sequencer.NewComposer(script)
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}

	now := time.Now()
	with, _ := c.Compose(entity.AnswerSet{"name": "Ada", "job": "Engineer at Acme"}, now)
	without, _ := c.Compose(entity.AnswerSet{"name": "Ada", "job": "Engineer"}, now)

	if !strings.Contains(with, "(company named)") || strings.Contains(without, "(company named)") {
		t.Fatalf("unexpected conditional output: %q / %q", with, without)
	}
}

func TestVerifyDetectsUnusedAnswer(t *testing.T) {
	script := twoPromptScript()
	script.RequestTemplate = "Letter for {{.Answers.name}} on {{.Date}}"

	c, err := sequencer.NewComposer(script)
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}

	err = c.Verify()
	if !errors.Is(err, entity.ErrInvalidScript) || !strings.Contains(err.Error(), "job") {
		t.Fatalf("expected unused job answer error, got %v", err)
	}
}

func TestVerifyDetectsMissingDate(t *testing.T) {
	script := twoPromptScript()
	script.RequestTemplate = "{{range .Pairs}}{{.Question}} {{.Answer}}\n{{end}}"

	c, err := sequencer.NewComposer(script)
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	if err := c.Verify(); !errors.Is(err, entity.ErrInvalidScript) {
		t.Fatalf("expected ErrInvalidScript, got %v", err)
	}
}

func TestNewComposerRejectsBrokenTemplate(t *testing.T) {
	script := twoPromptScript()
	script.RequestTemplate = "{{.Answers.name"

	if _, err := sequencer.NewComposer(script); !errors.Is(err, entity.ErrInvalidScript) {
		t.Fatalf("expected ErrInvalidScript, got %v", err)
	}
}
