package render

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/futig/coverletter-backend/internal/entity"
)

const (
	MsgWelcome = `👋 Hi! I'll help you write a cover letter.

I'll ask a few short questions about you and the job, then send you a ready-to-use document.`

	MsgHelp = `🤖 Commands:

/start - Write a new cover letter
/help - Show this help
/cancel - Drop the current letter

Answer each question with a text message. After the last answer I'll generate the letter and send it as a file.`

	MsgCancelConfirm   = `⚠️ Are you sure? Your answers will be lost.`
	MsgSessionFinished = `👌 Session closed. Use /start to write another letter.`
	MsgContinue        = `👍 Let's continue.`
	MsgTextOnly        = `✏️ Please answer with a text message.`

	ErrGeneric         = `❌ Something went wrong. Try again or press /start`
	ErrSessionNotFound = `❌ No active session. Use /start`
	ErrPromptPending   = `⏳ Wait for the next question, please.`
	ErrSessionDone     = `✅ This letter is finished. Use /start to write another one.`
	ErrGenerating      = `⏳ Your letter is being generated, hang on.`
	ErrAnswerTooLong   = `❌ That answer is too long, try a shorter one.`
	ErrNetworkIssue    = `❌ Connection problem. Try again a bit later.`
	ErrTimeout         = `❌ The operation took too long. Try again.`
	ErrRateLimited     = `⚠️ Too many messages. Please wait a moment.`
)

// ClassifyError returns a user facing message for err
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ErrGeneric
	case errors.Is(err, entity.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, entity.ErrPromptPending):
		return ErrPromptPending
	case errors.Is(err, entity.ErrSessionDone):
		return ErrSessionDone
	case errors.Is(err, entity.ErrFinalizationInProgress), errors.Is(err, entity.ErrNotReadyToFinalize):
		return ErrGenerating
	case errors.Is(err, entity.ErrAnswerTooLong):
		return ErrAnswerTooLong
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	if strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return ErrTimeout
	}

	return ErrGeneric
}
