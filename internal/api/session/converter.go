package session

import (
	"github.com/futig/coverletter-backend/internal/entity"
	sessionuc "github.com/futig/coverletter-backend/internal/usecase/session"
)

// downloadURL points artifact handles at the artifact download route
func downloadURL(handle string) string {
	return "/artifacts/" + entity.ArtifactID(handle)
}

func toSessionDTO(snapshot *entity.SessionSnapshot) *entity.SessionDTO {
	return sessionuc.ToSessionDTO(snapshot, downloadURL)
}

func toMessageDTOs(msgs []entity.Message) []entity.MessageDTO {
	return sessionuc.ToMessageDTOs(msgs, downloadURL)
}

func toMessageDTO(msg entity.Message) entity.MessageDTO {
	return sessionuc.ToMessageDTO(msg, downloadURL)
}
