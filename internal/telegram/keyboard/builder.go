package keyboard

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback actions
const (
	ActionStart   = "action"
	ActionConfirm = "confirm"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Write a cover letter", EncodeCallback(ActionStart, "start")),
		),
	)
}

// CancelConfirmKeyboard asks to confirm dropping the session
func (b *Builder) CancelConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, drop it", EncodeCallback(ActionConfirm, "cancel")),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, continue", EncodeCallback(ActionConfirm, "continue")),
		),
	)
}

// RestartKeyboard offers a new letter once the current one is finished
func (b *Builder) RestartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Write another letter", EncodeCallback(ActionStart, "start")),
		),
	)
}
