// Package tui is an interactive terminal front-end for the letter conversation.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/futig/coverletter-backend/internal/entity"
)

// SessionUsecase is the part of the session use case the terminal needs
type SessionUsecase interface {
	StartSession(ctx context.Context) (*entity.SessionSnapshot, error)
	Subscribe(ctx context.Context, sessionID string) (<-chan entity.Message, func(), error)
	SubmitAnswer(ctx context.Context, sessionID string, req *entity.SubmitAnswerRequest) (*entity.SubmitResult, error)
	Finalize(ctx context.Context, sessionID string) (*entity.SessionSnapshot, error)
	GetArtifact(ctx context.Context, ref string) (*entity.Artifact, error)
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	askerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	respondentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2)
	artifactStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Underline(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type sessionStartedMsg struct {
	snapshot    *entity.SessionSnapshot
	updates     <-chan entity.Message
	unsubscribe func()
}

type transcriptMsg struct {
	msg entity.Message
}

type answerResultMsg struct {
	result *entity.SubmitResult
	err    error
}

type finalizedMsg struct {
	err error
}

type artifactSavedMsg struct {
	path string
	err  error
}

type errMsg struct {
	err error
}

// App is the bubbletea model of one letter conversation
type App struct {
	ctx    context.Context
	uc     SessionUsecase
	outDir string

	sessionID   string
	messages    []entity.Message
	updates     <-chan entity.Message
	unsubscribe func()
	generating  bool
	done        bool
	savedPath   string
	status      string
	err         error

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
}

// NewApp creates the model. Rendered letters are written to outDir.
func NewApp(ctx context.Context, uc SessionUsecase, outDir string) *App {
	input := textinput.New()
	input.Placeholder = "Type your answer and press Enter"
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ctx:      ctx,
		uc:       uc,
		outDir:   outDir,
		input:    input,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		status:   "Starting…",
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.startSession)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.viewport.Width = msg.Width
		a.viewport.Height = max(msg.Height-5, 3)
		a.input.Width = max(msg.Width-4, 10)
		a.ready = true
		a.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			a.close()
			return a, tea.Quit
		case tea.KeyCtrlY:
			a.copyPath()
			return a, nil
		case tea.KeyEnter:
			return a, a.submit()
		}

	case sessionStartedMsg:
		a.sessionID = msg.snapshot.ID
		a.messages = append(a.messages, msg.snapshot.Messages...)
		a.updates = msg.updates
		a.unsubscribe = msg.unsubscribe
		a.status = fmt.Sprintf("Question 1 of %d", msg.snapshot.State.TotalPrompts)
		a.refresh()
		return a, a.waitForMessage

	case transcriptMsg:
		a.messages = append(a.messages, msg.msg)
		a.refresh()
		cmds = append(cmds, a.waitForMessage)
		if msg.msg.IsArtifact() {
			cmds = append(cmds, a.saveArtifact(msg.msg.Handle))
		}

	case answerResultMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		if msg.result.Accepted {
			a.input.Reset()
		}
		state := msg.result.Snapshot.State
		if state.CurrentPrompt != nil {
			a.status = fmt.Sprintf("Question %d of %d", state.CurrentIndex+1, state.TotalPrompts)
		}
		if msg.result.Finalize {
			a.generating = true
			a.status = "Writing your letter"
			return a, tea.Batch(a.finalize, a.spinner.Tick)
		}

	case finalizedMsg:
		a.generating = false
		a.done = true
		a.err = msg.err
		if msg.err == nil {
			a.status = "Done"
		} else {
			a.status = "Generation failed"
		}

	case artifactSavedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.savedPath = msg.path
		a.status = "Saved to " + msg.path + " · ctrl+y copies the path"

	case errMsg:
		a.err = msg.err

	case spinner.TickMsg:
		if !a.generating {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)

	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("✍ Cover Letter"))
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	status := a.status
	if a.generating {
		status = a.spinner.View() + " " + status
	}
	b.WriteString(statusStyle.Render(status))
	if a.err != nil {
		b.WriteString("  " + errorStyle.Render(a.err.Error()))
	}
	b.WriteString("\n")

	if !a.done {
		b.WriteString(a.input.View())
	} else {
		b.WriteString(statusStyle.Render("esc to quit"))
	}

	return b.String()
}

func (a *App) refresh() {
	a.viewport.SetContent(renderTranscript(a.messages, a.viewport.Width))
	a.viewport.GotoBottom()
}

func (a *App) startSession() tea.Msg {
	snapshot, err := a.uc.StartSession(a.ctx)
	if err != nil {
		return errMsg{err: err}
	}

	updates, unsubscribe, err := a.uc.Subscribe(a.ctx, snapshot.ID)
	if err != nil {
		return errMsg{err: err}
	}

	return sessionStartedMsg{snapshot: snapshot, updates: updates, unsubscribe: unsubscribe}
}

func (a *App) waitForMessage() tea.Msg {
	if a.updates == nil {
		return nil
	}

	msg, ok := <-a.updates
	if !ok {
		return nil
	}
	return transcriptMsg{msg: msg}
}

func (a *App) submit() tea.Cmd {
	if a.sessionID == "" || a.generating || a.done {
		return nil
	}

	text := a.input.Value()

	sessionID := a.sessionID
	return func() tea.Msg {
		result, err := a.uc.SubmitAnswer(a.ctx, sessionID, &entity.SubmitAnswerRequest{Answer: text})
		return answerResultMsg{result: result, err: err}
	}
}

func (a *App) finalize() tea.Msg {
	_, err := a.uc.Finalize(a.ctx, a.sessionID)
	return finalizedMsg{err: err}
}

func (a *App) saveArtifact(handle string) tea.Cmd {
	return func() tea.Msg {
		artifact, err := a.uc.GetArtifact(a.ctx, handle)
		if err != nil {
			return artifactSavedMsg{err: err}
		}

		path := filepath.Join(a.outDir, artifact.Filename())
		if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
			return artifactSavedMsg{err: fmt.Errorf("save letter: %w", err)}
		}
		return artifactSavedMsg{path: path}
	}
}

func (a *App) copyPath() {
	if a.savedPath == "" {
		return
	}

	abs, err := filepath.Abs(a.savedPath)
	if err != nil {
		abs = a.savedPath
	}
	if err := clipboard.WriteAll(abs); err != nil {
		a.err = fmt.Errorf("copy to clipboard: %w", err)
		return
	}
	a.status = "Copied " + abs
}

func (a *App) close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// renderTranscript formats the conversation for the viewport
func renderTranscript(msgs []entity.Message, width int) string {
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case m.IsArtifact():
			lines = append(lines, artifactStyle.Render("📄 "+entity.ArtifactID(m.Handle)))
		case m.Origin == entity.OriginRespondent:
			lines = append(lines, respondentStyle.Render("› "+m.Text))
		default:
			lines = append(lines, askerStyle.Render(m.Text))
		}
	}

	return wrap.Render(strings.Join(lines, "\n"))
}
