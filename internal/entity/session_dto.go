package entity

import "time"

// SessionSnapshot is the full observable state of one conversation
type SessionSnapshot struct {
	ID        string         `json:"session_id"`
	State     SequencerState `json:"state"`
	Messages  []Message      `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
}

// SubmitResult describes what an accepted or ignored answer did
type SubmitResult struct {
	Snapshot *SessionSnapshot
	Accepted bool
	// Finalize is set when the answer completed the script and generation must run
	Finalize bool
}

type SubmitAnswerRequest struct {
	Answer      string `json:"answer"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type MessageDTO struct {
	Kind        MessageKind `json:"kind"`
	Origin      Origin      `json:"origin"`
	Text        string      `json:"text,omitempty"`
	Handle      string      `json:"handle,omitempty"`
	DownloadURL string      `json:"download_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type SessionDTO struct {
	ID             string           `json:"session_id"`
	Stage          Stage            `json:"stage"`
	Status         GenerationStatus `json:"status"`
	CurrentIndex   int              `json:"current_index"`
	TotalPrompts   int              `json:"total_prompts"`
	CurrentPrompt  *Prompt          `json:"current_prompt,omitempty"`
	PromptPending  bool             `json:"prompt_pending"`
	ArtifactHandle string           `json:"artifact_handle,omitempty"`
	Messages       []MessageDTO     `json:"messages"`
	CreatedAt      time.Time        `json:"created_at"`
}
