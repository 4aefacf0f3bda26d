package validator

import (
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/google/uuid"
)

// Validator checks inbound requests
type Validator struct {
	maxAnswerLength int
}

func NewValidator(maxAnswerLength int) *Validator {
	return &Validator{maxAnswerLength: maxAnswerLength}
}

// ValidateSubmitAnswer validates answer submission. Blank answers pass here,
// the sequencer ignores them.
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if v.maxAnswerLength > 0 && utf8.RuneCountInString(req.Answer) > v.maxAnswerLength {
		return fmt.Errorf("%w: answer exceeds %d characters", entity.ErrAnswerTooLong, v.maxAnswerLength)
	}

	if req.CallbackURL != "" {
		u, err := url.Parse(req.CallbackURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: callback_url", entity.ErrInvalidFormat)
		}
	}

	return nil
}

// ValidateSessionID validates a session identifier from the path
func (v *Validator) ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: session_id", entity.ErrMissingField)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: session_id", entity.ErrInvalidParameter)
	}
	return nil
}
