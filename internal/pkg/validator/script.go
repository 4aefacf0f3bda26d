package validator

import (
	"fmt"
	"strings"

	"github.com/futig/coverletter-backend/internal/entity"
)

// ValidateScript checks the static script definition loaded at startup
func ValidateScript(script *entity.Script) error {
	if script == nil || len(script.Prompts) == 0 {
		return fmt.Errorf("%w: no prompts", entity.ErrInvalidScript)
	}

	keys := make(map[string]struct{}, len(script.Prompts))
	texts := make(map[string]struct{}, len(script.Prompts))
	for i, p := range script.Prompts {
		if strings.TrimSpace(p.Key) == "" {
			return fmt.Errorf("%w: prompt %d has an empty key", entity.ErrInvalidScript, i)
		}
		if strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("%w: prompt %q has an empty text", entity.ErrInvalidScript, p.Key)
		}
		if _, ok := keys[p.Key]; ok {
			return fmt.Errorf("%w: duplicate prompt key %q", entity.ErrInvalidScript, p.Key)
		}
		// first-prompt guard matches on text
		if _, ok := texts[p.Text]; ok {
			return fmt.Errorf("%w: duplicate prompt text %q", entity.ErrInvalidScript, p.Text)
		}
		keys[p.Key] = struct{}{}
		texts[p.Text] = struct{}{}
	}

	if strings.TrimSpace(script.RequestTemplate) == "" {
		return fmt.Errorf("%w: request_template is empty", entity.ErrInvalidScript)
	}
	if strings.TrimSpace(script.Announcement) == "" {
		return fmt.Errorf("%w: announcement is empty", entity.ErrInvalidScript)
	}

	doc := script.Document
	for field, key := range map[string]string{
		"document.name_key":  doc.NameKey,
		"document.email_key": doc.EmailKey,
		"document.phone_key": doc.PhoneKey,
	} {
		if key == "" {
			return fmt.Errorf("%w: %s", entity.ErrMissingField, field)
		}
		if _, ok := keys[key]; !ok {
			return fmt.Errorf("%w: %s refers to unknown prompt %q", entity.ErrInvalidScript, field, key)
		}
	}

	return nil
}
