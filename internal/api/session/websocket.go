package session

import (
	"context"
	"net/http"
	"time"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Stream event types
const (
	eventSnapshot = "snapshot"
	eventMessage  = "message"
	eventState    = "state"
	eventError    = "error"
)

// incomingMessage is a client frame, only "answer" is understood
type incomingMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Stream handles GET /letter-session/{id}/ws. It sends the current snapshot,
// pushes every transcript append and accepts answers over the socket.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r, "Stream")
	if !ok {
		return
	}

	// Subscribe before the snapshot so no append is missed in between
	updates, unsubscribe, err := h.usecase.Subscribe(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	defer unsubscribe()

	snapshot, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxzap.Error(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctxzap.Info(ctx, "websocket connected")

	out := make(chan outgoingMessage, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		// A dead writer unblocks the reader
		defer conn.Close()
		defer cancel()
		h.writeLoop(ctx, conn, sessionID, updates, out)
	}()

	send(ctx, out, outgoingMessage{Type: eventSnapshot, SessionID: sessionID, Data: toSessionDTO(snapshot)})

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg incomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ctxzap.Warn(ctx, "websocket closed unexpectedly", zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case "answer":
			h.streamAnswer(ctx, sessionID, msg.Text, out)
		default:
			send(ctx, out, errorFrame(sessionID, "unsupported message type"))
		}
	}

	cancel()
	<-writerDone
	ctxzap.Info(ctx, "websocket disconnected")
}

// streamAnswer submits the answer. The last answer is finalized in the
// background on a context detached from the connection. Transcript appends
// reach the client through the subscription.
func (h *Handler) streamAnswer(ctx context.Context, sessionID, text string, out chan<- outgoingMessage) {
	result, err := h.usecase.SubmitAnswer(ctx, sessionID, &entity.SubmitAnswerRequest{Answer: text})
	if err != nil {
		_, message := statusFor(err)
		ctxzap.Warn(ctx, "answer rejected", zap.Error(err))
		send(ctx, out, errorFrame(sessionID, message+": "+err.Error()))
		return
	}

	send(ctx, out, stateFrame(sessionID, result.Snapshot))
	if !result.Finalize {
		return
	}

	finCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
		zap.String("action", "Finalize-stream"),
	)

	go func() {
		snapshot, err := h.usecase.Finalize(finCtx, sessionID)
		if err != nil {
			ctxzap.Error(finCtx, "failed to finalize session", zap.Error(err))
			send(ctx, out, errorFrame(sessionID, "failed to generate cover letter"))
		}
		if snapshot != nil {
			send(ctx, out, stateFrame(sessionID, snapshot))
		}
	}()
}

// writeLoop is the only writer of the connection
func (h *Handler) writeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	sessionID string,
	updates <-chan entity.Message,
	out <-chan outgoingMessage,
) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		var frame outgoingMessage

		select {
		case <-ctx.Done():
			flush(conn, sessionID, updates, out)
			return
		case msg, ok := <-updates:
			if !ok {
				return
			}
			frame = messageFrame(sessionID, msg)
		case frame = <-out:
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ctxzap.Debug(ctx, "ping failed", zap.Error(err))
				return
			}
			continue
		}

		if err := writeFrame(conn, frame); err != nil {
			ctxzap.Warn(ctx, "failed to write websocket frame", zap.Error(err))
			return
		}
	}
}

// flush writes frames that were queued before the stream was cancelled
func flush(conn *websocket.Conn, sessionID string, updates <-chan entity.Message, out <-chan outgoingMessage) {
	for {
		var frame outgoingMessage

		select {
		case msg, ok := <-updates:
			if !ok {
				return
			}
			frame = messageFrame(sessionID, msg)
		case frame = <-out:
		default:
			return
		}

		if err := writeFrame(conn, frame); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, frame outgoingMessage) error {
	frame.Timestamp = time.Now().Unix()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

func send(ctx context.Context, out chan<- outgoingMessage, msg outgoingMessage) {
	select {
	case out <- msg:
	case <-ctx.Done():
	}
}

func messageFrame(sessionID string, msg entity.Message) outgoingMessage {
	return outgoingMessage{Type: eventMessage, SessionID: sessionID, Data: toMessageDTO(msg)}
}

func stateFrame(sessionID string, snapshot *entity.SessionSnapshot) outgoingMessage {
	return outgoingMessage{Type: eventState, SessionID: sessionID, Data: toSessionDTO(snapshot)}
}

func errorFrame(sessionID, message string) outgoingMessage {
	return outgoingMessage{
		Type:      eventError,
		SessionID: sessionID,
		Data:      map[string]string{"message": message},
	}
}
