package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yuriiter/freccia/pkg/bot"
	"github.com/yuriiter/freccia/pkg/utils"
)

// API is the part of the Telegram client the poller needs.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// Handler answers one chat message.
type Handler interface {
	Handle(ctx context.Context, sessionID, text string) (bot.Reply, error)
}

// Poller long-polls Telegram and feeds text messages to the handler.
// Messages of one chat are answered one at a time in arrival order; chats
// proceed independently.
type Poller struct {
	api     API
	handler Handler
	logger  *slog.Logger
	timeout int

	mu     sync.Mutex
	queues map[int64][]string
}

type Option func(*Poller)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithPollTimeout sets the long-polling timeout in seconds.
func WithPollTimeout(seconds int) Option {
	return func(p *Poller) {
		p.timeout = seconds
	}
}

// Connect authenticates with the bot token.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return api, nil
}

func NewPoller(api API, handler Handler, opts ...Option) *Poller {
	p := &Poller{
		api:     api,
		handler: handler,
		logger:  utils.NewNop(),
		timeout: 60,
		queues:  make(map[int64][]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SessionID is the conversation key of a Telegram chat.
func SessionID(chatID int64) string {
	return "telegram:" + strconv.FormatInt(chatID, 10)
}

// Run processes updates until ctx is cancelled or the update channel closes.
// Messages already received are still answered before it returns.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(u)

	turnCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			p.enqueue(turnCtx, &wg, update.Message.Chat.ID, update.Message.Text)
		}
	}
}

// enqueue appends the message to its chat's queue, starting the chat's
// worker when none is running. The worker exits once the queue is empty.
func (p *Poller) enqueue(ctx context.Context, wg *sync.WaitGroup, chatID int64, text string) {
	p.mu.Lock()
	pending, running := p.queues[chatID]
	p.queues[chatID] = append(pending, text)
	p.mu.Unlock()
	if running {
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			p.mu.Lock()
			queue := p.queues[chatID]
			if len(queue) == 0 {
				delete(p.queues, chatID)
				p.mu.Unlock()
				return
			}
			next := queue[0]
			p.queues[chatID] = queue[1:]
			p.mu.Unlock()

			p.answer(ctx, chatID, next)
		}
	}()
}

func (p *Poller) answer(ctx context.Context, chatID int64, text string) {
	p.logger.Debug("message received", "chat_id", chatID, "text", text)
	reply, err := p.handler.Handle(ctx, SessionID(chatID), text)
	if err != nil {
		p.logger.Error("handle message", "chat_id", chatID, "err", err)
	}
	if reply.Empty() {
		return
	}
	if _, err := p.api.Send(Message(chatID, reply)); err != nil {
		p.logger.Error("send reply", "chat_id", chatID, "err", err)
	}
}

// Message converts a bot reply to a Telegram message. Options become a
// one-time keyboard with one button per row.
func Message(chatID int64, reply bot.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	switch {
	case len(reply.Options) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Options))
		for _, o := range reply.Options {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(o)))
		}
		kb := tgbotapi.NewOneTimeReplyKeyboard(rows...)
		kb.InputFieldPlaceholder = reply.Placeholder
		msg.ReplyMarkup = kb
	case reply.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	return msg
}
