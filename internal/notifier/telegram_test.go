package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	failures int
	sent     []tgbotapi.MessageConfig
	calls    int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func newTestNotifier(s Sender) *TelegramNotifier {
	n := NewWithSender(s, 42)
	n.interval = time.Millisecond
	return n
}

func TestNotify(t *testing.T) {
	s := &fakeSender{failures: 2}
	require.NoError(t, newTestNotifier(s).Notify(context.Background(), "hello"))

	require.Len(t, s.sent, 1)
	assert.Equal(t, 3, s.calls)
	assert.Equal(t, int64(42), s.sent[0].ChatID)
	assert.Equal(t, "hello", s.sent[0].Text)
}

func TestNotify_GivesUp(t *testing.T) {
	s := &fakeSender{failures: 100}
	err := newTestNotifier(s).Notify(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 4, s.calls)
}

func TestNotify_SplitsLongText(t *testing.T) {
	s := &fakeSender{}
	line := strings.Repeat("x", 99) + "\n"
	text := strings.Repeat(line, 50)

	require.NoError(t, newTestNotifier(s).Notify(context.Background(), text))
	require.Len(t, s.sent, 2)
	assert.Equal(t, text, s.sent[0].Text+s.sent[1].Text)
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"short"}, Split("short", 10))
	assert.Equal(t, []string{"aaaa\n", "bbbb\n", "cc"}, Split("aaaa\nbbbb\ncc", 6))
	assert.Equal(t, []string{"ééé", "ééé", "é"}, Split("ééééééé", 3))

	for _, p := range Split(strings.Repeat("line of text\n", 1000), MaxMessageLen) {
		assert.LessOrEqual(t, len([]rune(p)), MaxMessageLen)
	}
}
