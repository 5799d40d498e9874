package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxMessageLen is Telegram's limit for a single text message.
const MaxMessageLen = 4096

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	sender     Sender
	chatID     int64
	maxRetries uint64
	interval   time.Duration
	logger     zerolog.Logger
}

// NewTelegramNotifier authorizes the bot token and returns a notifier for chatID.
func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	n := NewWithSender(bot, chatID)
	n.logger.Debug().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")
	return n, nil
}

// NewWithSender builds a notifier around an existing sender.
func NewWithSender(sender Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		sender:     sender,
		chatID:     chatID,
		maxRetries: 3,
		interval:   time.Second,
		logger:     log.With().Str("component", "telegram_notifier").Int64("chat_id", chatID).Logger(),
	}
}

// Notify sends text, split into several messages when it is too long. Each part
// is retried with exponential backoff.
func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	for i, part := range Split(text, MaxMessageLen) {
		msg := tgbotapi.NewMessage(t.chatID, part)
		msg.DisableWebPagePreview = true

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = t.interval
		policy := backoff.WithContext(backoff.WithMaxRetries(b, t.maxRetries), ctx)

		err := backoff.RetryNotify(func() error {
			_, err := t.sender.Send(msg)
			return err
		}, policy, func(err error, wait time.Duration) {
			t.logger.Warn().Err(err).Int("part", i).Dur("retry_in", wait).Msg("Telegram send failed, retrying")
		})
		if err != nil {
			return fmt.Errorf("sending telegram message part %d: %w", i+1, err)
		}
	}
	t.logger.Info().Msg("Report sent to Telegram")
	return nil
}

// Split breaks text into chunks of at most limit runes, preferring line boundaries.
func Split(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			r := []rune(line)
			parts = append(parts, string(r[:limit]))
			line = string(r[limit:])
			n -= limit
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return parts
}
