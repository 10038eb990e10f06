// Package alert broadcasts festival impact reports via the Telegram Bot API.
// Assessments are rendered into a MarkdownV2 message and delivered with
// retry logic for transient API failures.
package alert

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dial112/callscope/internal/models"
)

// Client handles Telegram alert delivery
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new alert client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendImpactReport sends a report for the given assessments. Assessments
// should already be filtered to the significant ones.
func (c *Client) SendImpactReport(category string, assessments []models.ImpactAssessment) error {
	message := FormatImpactReport(category, assessments)

	msg := tgbotapi.NewMessage(c.chatID, message)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send alert after %d retries: %w", c.maxRetries, lastErr)
}

// FormatImpactReport renders assessments into a Telegram MarkdownV2 message.
func FormatImpactReport(category string, assessments []models.ImpactAssessment) string {
	message := "🚨 *Festival Call Volume Impact Report*\n\n"
	message += fmt.Sprintf("📂 Category: %s\n\n", escapeMarkdownV2(category))

	if len(assessments) == 0 {
		message += "No festivals with significant call volume impact\\.\n"
		return message
	}

	for i, a := range assessments {
		emoji := categoryEmoji(a.ImpactCategory)

		name := escapeMarkdownV2(a.FestivalName)
		date := escapeMarkdownV2(a.FestivalDate)
		ratio := escapeMarkdownV2(fmt.Sprintf("%.2fx", a.ImpactRatio))
		avg := escapeMarkdownV2(fmt.Sprintf("%.1f", a.AvgCallsDuring))
		baseline := escapeMarkdownV2(fmt.Sprintf("%.1f", a.Baseline))

		message += fmt.Sprintf("%d\\. *%s* \\(%s\\)\n", i+1, name, date)
		message += fmt.Sprintf("   %s Impact: *%s* baseline \\(%s\\)\n", emoji, ratio, escapeMarkdownV2(a.ImpactCategory))
		message += fmt.Sprintf("   📞 Avg calls: %s vs baseline %s, peak %d\n\n", avg, baseline, a.MaxCallsDuring)
	}

	return message
}

func categoryEmoji(category string) string {
	switch category {
	case models.ImpactHigh:
		return "🔴"
	case models.ImpactModerate:
		return "🟠"
	default:
		return "🟢"
	}
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}
