// Package notify alerts staff about comments that need immediate attention.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/models"
)

// Notifier is told about every analysis that flags a comment.
type Notifier interface {
	NotifyFlagged(ctx context.Context, comment models.CommentInput, result models.AnalysisResult) error
}

// Nop discards alerts. It is used when no alert channel is configured.
type Nop struct{}

func (Nop) NotifyFlagged(context.Context, models.CommentInput, models.AnalysisResult) error {
	return nil
}

// sender is the part of the Telegram API the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts alerts to a staff chat.
type TelegramNotifier struct {
	api    sender
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &TelegramNotifier{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) NotifyFlagged(ctx context.Context, comment models.CommentInput, result models.AnalysisResult) error {
	msg := tgbotapi.NewMessage(n.chatID, formatAlert(comment, result))
	msg.ParseMode = "MarkdownV2"

	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send alert",
			zap.Error(err),
			zap.Int64("chat_id", n.chatID),
			zap.Int64("comment_id", comment.ID))
		return fmt.Errorf("failed to send alert for comment %d: %w", comment.ID, err)
	}

	return nil
}

func formatAlert(comment models.CommentInput, result models.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*Comment \\#%d needs attention*\n", comment.ID))
	b.WriteString(fmt.Sprintf("_%s_\n\n", escapeMarkdown(comment.Text)))

	if result.Urgency != "" {
		b.WriteString(fmt.Sprintf("*Urgency:* %s\n", escapeMarkdown(result.Urgency)))
	}
	if result.InappropriateContent != "" && result.InappropriateContent != string(models.InappropriateNone) {
		b.WriteString(fmt.Sprintf("*Flag:* %s\n", escapeMarkdown(result.InappropriateContent)))
	}
	if result.Topic != "" {
		formattedTopic := "#" + strings.ReplaceAll(result.Topic, " ", "_")
		b.WriteString(fmt.Sprintf("*Topic:* %s\n", escapeMarkdown(formattedTopic)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// escapeMarkdown escapes the characters reserved by Telegram MarkdownV2.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}
