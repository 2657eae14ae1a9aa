package telegram

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuriiter/freccia/pkg/bot"
)

type fakeAPI struct {
	updates chan tgbotapi.Update

	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	stopped bool
	timeout int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.timeout = config.Timeout
	return f.updates
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type echoHandler struct {
	mu       sync.Mutex
	sessions []string
}

func (h *echoHandler) Handle(ctx context.Context, sessionID, text string) (bot.Reply, error) {
	h.mu.Lock()
	h.sessions = append(h.sessions, sessionID)
	h.mu.Unlock()
	switch text {
	case "/help":
		return bot.Reply{}, nil
	case "broken":
		return bot.Reply{Text: "oops"}, errors.New("store down")
	}
	return bot.Reply{Text: "echo " + text}, nil
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
	}}
}

func TestPoller_Run(t *testing.T) {
	api := newFakeAPI()
	h := &echoHandler{}
	p := NewPoller(api, h, WithPollTimeout(30))

	api.updates <- textUpdate(7, "Milano")
	api.updates <- textUpdate(8, "/help")
	api.updates <- tgbotapi.Update{}
	api.updates <- textUpdate(9, "broken")
	close(api.updates)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 30, api.timeout)

	sent := api.messages()
	require.Len(t, sent, 2)
	texts := map[int64]string{}
	for _, m := range sent {
		texts[m.ChatID] = m.Text
	}
	assert.Equal(t, map[int64]string{7: "echo Milano", 9: "oops"}, texts)
	assert.ElementsMatch(t, []string{"telegram:7", "telegram:8", "telegram:9"}, h.sessions)
}

func TestPoller_StopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	p := NewPoller(api, &echoHandler{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
}

type orderHandler struct {
	mu   sync.Mutex
	seen map[string][]string
}

func (h *orderHandler) Handle(ctx context.Context, sessionID, text string) (bot.Reply, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[sessionID] = append(h.seen[sessionID], text)
	return bot.Reply{}, nil
}

func TestPoller_KeepsChatOrder(t *testing.T) {
	const n = 500
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 2*n)}
	h := &orderHandler{seen: map[string][]string{}}

	var want []string
	for i := range n {
		want = append(want, strconv.Itoa(i))
		api.updates <- textUpdate(42, strconv.Itoa(i))
		api.updates <- textUpdate(int64(100+i%3), strconv.Itoa(i))
	}
	close(api.updates)

	require.NoError(t, NewPoller(api, h).Run(context.Background()))

	assert.Equal(t, want, h.seen["telegram:42"])
	total := 0
	for _, texts := range h.seen {
		total += len(texts)
	}
	assert.Equal(t, 2*n, total)
}

type blockingHandler struct {
	started chan struct{}
	release chan struct{}
	ctxErr  error
}

func (h *blockingHandler) Handle(ctx context.Context, sessionID, text string) (bot.Reply, error) {
	close(h.started)
	<-h.release
	h.ctxErr = ctx.Err()
	return bot.Reply{Text: "done"}, nil
}

func TestPoller_FinishesTurnsAfterCancel(t *testing.T) {
	api := newFakeAPI()
	h := &blockingHandler{started: make(chan struct{}), release: make(chan struct{})}
	p := NewPoller(api, h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	api.updates <- textUpdate(7, "Milano")
	<-h.started
	cancel()
	close(h.release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	assert.NoError(t, h.ctxErr)
	require.Len(t, api.messages(), 1)
	assert.Equal(t, "done", api.messages()[0].Text)
}

func TestMessage(t *testing.T) {
	msg := Message(5, bot.Reply{
		Text:        "Scegli la stazione.",
		Options:     []string{"Milano Centrale", "Milano Rogoredo"},
		Placeholder: "Scegli la stazione...",
	})
	assert.Equal(t, int64(5), msg.ChatID)
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.OneTimeKeyboard)
	assert.Equal(t, "Scegli la stazione...", kb.InputFieldPlaceholder)
	require.Len(t, kb.Keyboard, 2)
	assert.Equal(t, "Milano Rogoredo", kb.Keyboard[1][0].Text)

	msg = Message(5, bot.Reply{Text: "ok", RemoveKeyboard: true})
	_, ok = msg.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
	assert.True(t, ok)

	msg = Message(5, bot.Reply{Text: "plain"})
	assert.Nil(t, msg.ReplyMarkup)
}

func TestSessionID(t *testing.T) {
	assert.Equal(t, "telegram:-100123", SessionID(-100123))
}
