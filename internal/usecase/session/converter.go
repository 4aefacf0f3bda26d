package session

import (
	"github.com/futig/coverletter-backend/internal/entity"
)

// ToSessionDTO converts a snapshot to its API representation. downloadURL maps
// an artifact handle to a client visible URL, nil leaves the URL empty.
func ToSessionDTO(s *entity.SessionSnapshot, downloadURL func(handle string) string) *entity.SessionDTO {
	if s == nil {
		return nil
	}

	return &entity.SessionDTO{
		ID:             s.ID,
		Stage:          s.State.Stage,
		Status:         s.State.Status,
		CurrentIndex:   s.State.CurrentIndex,
		TotalPrompts:   s.State.TotalPrompts,
		CurrentPrompt:  s.State.CurrentPrompt,
		PromptPending:  s.State.PromptPending,
		ArtifactHandle: s.State.ArtifactHandle,
		Messages:       ToMessageDTOs(s.Messages, downloadURL),
		CreatedAt:      s.CreatedAt,
	}
}

func ToMessageDTOs(msgs []entity.Message, downloadURL func(handle string) string) []entity.MessageDTO {
	out := make([]entity.MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ToMessageDTO(m, downloadURL))
	}
	return out
}

func ToMessageDTO(m entity.Message, downloadURL func(handle string) string) entity.MessageDTO {
	dto := entity.MessageDTO{
		Kind:      m.Kind,
		Origin:    m.Origin,
		Text:      m.Text,
		Handle:    m.Handle,
		CreatedAt: m.CreatedAt,
	}
	if m.IsArtifact() && downloadURL != nil {
		dto.DownloadURL = downloadURL(m.Handle)
	}
	return dto
}
