package sequencer

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/futig/coverletter-backend/internal/entity"
)

const defaultDateLayout = "January 2, 2006"

// QuestionAnswer pairs a prompt with its answer in script order
type QuestionAnswer struct {
	Key      string
	Question string
	Answer   string
}

type requestData struct {
	Answers entity.AnswerSet
	Pairs   []QuestionAnswer
	Date    string
}

// Composer builds the single generation request from the collected answers
type Composer struct {
	tmpl       *template.Template
	prompts    []entity.Prompt
	dateLayout string
}

func NewComposer(script *entity.Script) (*Composer, error) {
	if strings.TrimSpace(script.RequestTemplate) == "" {
		return nil, fmt.Errorf("%w: request template is empty", entity.ErrInvalidScript)
	}

	tmpl, err := template.New("request").
		Option("missingkey=zero").
		Funcs(template.FuncMap{
			"contains": strings.Contains,
			"trim":     strings.TrimSpace,
		}).
		Parse(script.RequestTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: parse request template: %v", entity.ErrInvalidScript, err)
	}

	layout := script.DateLayout
	if layout == "" {
		layout = defaultDateLayout
	}

	return &Composer{
		tmpl:       tmpl,
		prompts:    script.Prompts,
		dateLayout: layout,
	}, nil
}

// Compose renders the request text. The result depends only on answers and now.
func (c *Composer) Compose(answers entity.AnswerSet, now time.Time) (string, error) {
	data := requestData{
		Answers: answers,
		Pairs:   make([]QuestionAnswer, 0, len(c.prompts)),
		Date:    now.Format(c.dateLayout),
	}
	for _, p := range c.prompts {
		data.Pairs = append(data.Pairs, QuestionAnswer{
			Key:      p.Key,
			Question: p.Text,
			Answer:   answers[p.Key],
		})
	}

	var sb strings.Builder
	if err := c.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("execute request template: %w", err)
	}

	return sb.String(), nil
}

// Verify renders the template with marker answers and checks that every
// answer and the date end up in the request
func (c *Composer) Verify() error {
	markers := make(entity.AnswerSet, len(c.prompts))
	for _, p := range c.prompts {
		markers[p.Key] = "{{answer:" + p.Key + "}}"
	}

	probe := time.Date(2001, time.February, 3, 0, 0, 0, 0, time.UTC)
	out, err := c.Compose(markers, probe)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidScript, err)
	}

	var missing []string
	for _, p := range c.prompts {
		if !strings.Contains(out, markers[p.Key]) {
			missing = append(missing, p.Key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: request template does not use answers %s", entity.ErrInvalidScript, strings.Join(missing, ", "))
	}

	if !strings.Contains(out, probe.Format(c.dateLayout)) {
		return fmt.Errorf("%w: request template does not use the current date", entity.ErrInvalidScript)
	}

	return nil
}
