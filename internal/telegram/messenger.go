package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// voiceFileName is the attachment name Telegram shows for synthesized audio.
const voiceFileName = "motivation.mp3"

// botAPI is the subset of *tgbotapi.BotAPI used for outbound messages.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Messenger sends messages to Telegram chats.
// It satisfies scheduler.Messenger.
type Messenger struct {
	bot botAPI
}

// NewMessenger wraps a bot client.
func NewMessenger(bot botAPI) *Messenger {
	return &Messenger{bot: bot}
}

// SendMessage sends a plain text message to the given chat.
func (m *Messenger) SendMessage(chatID int64, text string) error {
	_, err := m.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendMarkdown sends text rendered with Telegram's legacy Markdown mode.
func (m *Messenger) SendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := m.bot.Send(msg)
	return err
}

// SendVoice uploads MP3 audio as a voice message.
func (m *Messenger) SendVoice(chatID int64, audio []byte) error {
	_, err := m.bot.Send(tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: voiceFileName, Bytes: audio}))
	return err
}
