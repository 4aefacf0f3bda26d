package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sessionapi "github.com/futig/coverletter-backend/internal/api/session"
	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/integration/artifact"
	"github.com/futig/coverletter-backend/internal/pkg/formatter"
	"github.com/futig/coverletter-backend/internal/pkg/validator"
	sessionuc "github.com/futig/coverletter-backend/internal/usecase/session"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, string) (string, error) {
	return g.text, g.err
}

// gatedGenerator blocks until release is closed
type gatedGenerator struct {
	release chan struct{}
}

func (g gatedGenerator) Generate(context.Context, string) (string, error) {
	<-g.release
	return "Dear hiring team", nil
}

type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type recordingCallback struct {
	mu     sync.Mutex
	finals []*entity.SessionDTO
	errors []string
	done   chan struct{}
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{done: make(chan struct{}, 1)}
}

func (c *recordingCallback) SendError(_ context.Context, _, _ string, message string, _ map[string]any) {
	c.mu.Lock()
	c.errors = append(c.errors, message)
	c.mu.Unlock()
	c.done <- struct{}{}
}

func (c *recordingCallback) SendFinalResult(_ context.Context, _, _ string, data *entity.SessionDTO) {
	c.mu.Lock()
	c.finals = append(c.finals, data)
	c.mu.Unlock()
	c.done <- struct{}{}
}

func newRouter(gen generator, cb *recordingCallback) http.Handler {
	script := &entity.Script{
		Prompts: []entity.Prompt{
			{Key: "name", Text: "Name?"},
			{Key: "job", Text: "Job?"},
		},
		RequestTemplate: "{{.Answers.name}} {{.Answers.job}} {{.Date}}",
		Announcement:    "Here's your download link:",
		FailureNotice:   "Something went wrong.",
		Document:        entity.DocumentKeys{NameKey: "name", Closing: "Sincerely,"},
	}
	v := validator.NewValidator(100)
	uc := sessionuc.NewUsecase(
		script,
		gen,
		formatter.NewRenderer(formatter.NewMarkdownFormatter()),
		artifact.NewStore(time.Minute),
		v,
		config.SessionConfig{TTL: time.Minute},
		zap.NewNop(),
	)

	r := chi.NewRouter()
	sessionapi.RegisterRoutes(r, sessionapi.NewHandler(uc, v, cb), 5*time.Second)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) entity.SessionDTO {
	t.Helper()

	var dto entity.SessionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode session: %v (%s)", err, rec.Body.String())
	}
	return dto
}

func waitForStage(t *testing.T, h http.Handler, id string, stage entity.Stage) entity.SessionDTO {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		dto := decodeSession(t, do(t, h, http.MethodGet, "/letter-session/"+id, nil))
		if dto.Stage == stage {
			return dto
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session did not reach stage %s", stage)
	return entity.SessionDTO{}
}

func TestSessionFlowOverHTTP(t *testing.T) {
	cb := newRecordingCallback()
	h := newRouter(stubGenerator{text: "Dear hiring team"}, cb)

	rec := do(t, h, http.MethodPost, "/letter-session/", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d", rec.Code)
	}
	started := decodeSession(t, rec)
	if len(started.Messages) != 1 || started.Messages[0].Text != "Name?" {
		t.Fatalf("unexpected first transcript: %+v", started.Messages)
	}

	rec = do(t, h, http.MethodPost, "/letter-session/"+started.ID+"/answer", entity.SubmitAnswerRequest{Answer: "Ada"})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer status = %d (%s)", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/letter-session/"+started.ID+"/answer", entity.SubmitAnswerRequest{
		Answer:      "Engineer",
		CallbackURL: "http://client.local/hook",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("last answer status = %d (%s)", rec.Code, rec.Body.String())
	}

	select {
	case <-cb.done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not sent")
	}

	final := waitForStage(t, h, started.ID, entity.StageDone)
	last := final.Messages[len(final.Messages)-1]
	if last.Kind != entity.MessageKindArtifact || !strings.HasPrefix(last.DownloadURL, "/artifacts/") {
		t.Fatalf("expected artifact message with download url, got %+v", last)
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if len(cb.finals) != 1 || cb.finals[0].ArtifactHandle != last.Handle {
		t.Fatalf("unexpected final callbacks: %+v", cb.finals)
	}
}

func TestBlankAnswerReturnsOK(t *testing.T) {
	h := newRouter(stubGenerator{text: "x"}, newRecordingCallback())
	started := decodeSession(t, do(t, h, http.MethodPost, "/letter-session/", nil))

	rec := do(t, h, http.MethodPost, "/letter-session/"+started.ID+"/answer", entity.SubmitAnswerRequest{Answer: "  "})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if dto := decodeSession(t, rec); len(dto.Messages) != 1 || dto.CurrentIndex != 0 {
		t.Fatalf("blank answer changed the session: %+v", dto)
	}
}

func TestGenerationFailureSendsErrorCallback(t *testing.T) {
	cb := newRecordingCallback()
	h := newRouter(stubGenerator{err: errors.New("llm down")}, cb)
	started := decodeSession(t, do(t, h, http.MethodPost, "/letter-session/", nil))

	do(t, h, http.MethodPost, "/letter-session/"+started.ID+"/answer", entity.SubmitAnswerRequest{Answer: "Ada"})
	rec := do(t, h, http.MethodPost, "/letter-session/"+started.ID+"/answer", entity.SubmitAnswerRequest{
		Answer:      "Engineer",
		CallbackURL: "http://client.local/hook",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	select {
	case <-cb.done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not sent")
	}

	final := waitForStage(t, h, started.ID, entity.StageDone)
	for _, m := range final.Messages {
		if m.Kind == entity.MessageKindArtifact {
			t.Fatalf("failed generation produced an artifact: %+v", m)
		}
	}

	rec = do(t, h, http.MethodPost, "/letter-session/"+started.ID+"/answer", entity.SubmitAnswerRequest{Answer: "again"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("answer after done status = %d", rec.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	h := newRouter(stubGenerator{text: "x"}, newRecordingCallback())

	if rec := do(t, h, http.MethodGet, "/letter-session/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid id status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/letter-session/0b6f7d5e-7d8a-4c55-9c1e-2f2d4a0e9b11", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d", rec.Code)
	}

	started := decodeSession(t, do(t, h, http.MethodPost, "/letter-session/", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/letter-session/"+started.ID+"/answer", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("broken body status = %d", rec.Code)
	}

	if rec := do(t, h, http.MethodPost, "/letter-session/"+started.ID+"/cancel", nil); rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/letter-session/"+started.ID+"/messages", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("messages after cancel status = %d", rec.Code)
	}
}

type frame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
}

func TestStreamOverWebsocket(t *testing.T) {
	h := newRouter(stubGenerator{text: "Dear hiring team"}, newRecordingCallback())
	srv := httptest.NewServer(h)
	defer srv.Close()

	started := decodeSession(t, do(t, h, http.MethodPost, "/letter-session/", nil))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/letter-session/" + started.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var first frame
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.Type != "snapshot" || first.SessionID != started.ID {
		t.Fatalf("unexpected first frame: %+v", first)
	}

	for _, answer := range []string{"Ada", "Engineer"} {
		if err := conn.WriteJSON(map[string]string{"type": "answer", "text": answer}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	var sawArtifact bool
	for !sawArtifact {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		if f.Type == "error" {
			t.Fatalf("unexpected error frame: %s", f.Data)
		}
		if f.Type != "message" {
			continue
		}

		var msg entity.MessageDTO
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		sawArtifact = msg.Kind == entity.MessageKindArtifact
	}
}

func TestStreamKeepsReadingWhileGenerating(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	h := newRouter(gatedGenerator{release: release}, newRecordingCallback())
	srv := httptest.NewServer(h)
	defer srv.Close()

	started := decodeSession(t, do(t, h, http.MethodPost, "/letter-session/", nil))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/letter-session/" + started.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	for _, answer := range []string{"Ada", "Engineer", "too late"} {
		if err := conn.WriteJSON(map[string]string{"type": "answer", "text": answer}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	// The extra answer is rejected while the generator is still blocked
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read while generating: %v", err)
		}
		if f.Type == "error" {
			break
		}
	}

	unblock()

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read after generation: %v", err)
		}
		if f.Type != "message" {
			continue
		}

		var msg entity.MessageDTO
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		if msg.Kind == entity.MessageKindArtifact {
			break
		}
	}

	dto := decodeSession(t, do(t, h, http.MethodGet, "/letter-session/"+started.ID, nil))
	if dto.Stage != entity.StageDone {
		t.Fatalf("unexpected stage after generation: %s", dto.Stage)
	}
}
