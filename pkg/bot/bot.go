package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/yuriiter/freccia/pkg/providers"
	"github.com/yuriiter/freccia/pkg/render"
	"github.com/yuriiter/freccia/pkg/search"
	"github.com/yuriiter/freccia/pkg/utils"
)

// Reply is what the bot answers to one message. Options, when present, are
// offered as a one-time keyboard; RemoveKeyboard hides a previous one.
type Reply struct {
	Text           string
	Options        []string
	Placeholder    string
	RemoveKeyboard bool
}

func (r Reply) Empty() bool { return r.Text == "" }

// TurnRecorder is notified about every handled turn.
type TurnRecorder interface {
	ChatTurn(step string, failed bool)
}

type nopRecorder struct{}

func (nopRecorder) ChatTurn(string, bool) {}

// Bot drives the fare-search conversation. Each session walks a fixed
// sequence of steps; a failed turn leaves the session where it was.
type Bot struct {
	stations providers.StationFinder
	scanner  *search.Scanner
	sessions *Manager

	discount string
	maxDays  int
	logger   *slog.Logger
	turns    TurnRecorder
	now      func() time.Time
}

type Option func(*Bot)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithDiscountOffer sets the fare class the bot searches for.
func WithDiscountOffer(name string) Option {
	return func(b *Bot) {
		b.discount = name
	}
}

// WithMaxDays bounds the days before/after offered on the keyboard.
func WithMaxDays(n int) Option {
	return func(b *Bot) {
		b.maxDays = n
	}
}

func WithTurnRecorder(r TurnRecorder) Option {
	return func(b *Bot) {
		b.turns = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

func New(stations providers.StationFinder, scanner *search.Scanner, sessions *Manager, opts ...Option) *Bot {
	b := &Bot{
		stations: stations,
		scanner:  scanner,
		sessions: sessions,
		discount: search.DefaultDiscountOffer,
		maxDays:  5,
		logger:   utils.NewNop(),
		turns:    nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handle processes one incoming message for the session. Failures of the
// turn itself are answered with the recovery message; the returned error is
// only set when the session state could not be loaded or saved.
func (b *Bot) Handle(ctx context.Context, sessionID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	var reply Reply
	err := b.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		store := b.sessions.Store()
		sess, err := store.Load(ctx, sessionID)
		if errors.Is(err, ErrSessionNotFound) {
			sess = NewSession(sessionID)
		} else if err != nil {
			return err
		}

		if cmd, ok := command(text); ok {
			if cmd != CommandStart && cmd != CommandReset {
				return nil
			}
			sess = NewSession(sessionID)
			reply = b.greet(sess)
			return b.save(ctx, store, sess)
		}

		step := sess.Step
		next := sess.Clone()
		r, err := b.advance(ctx, next, text)
		b.turns.ChatTurn(string(step), err != nil)
		if err != nil {
			b.logger.Error("Exception while handling an update",
				"session_id", sessionID,
				"step", step,
				"err", err,
			)
			reply = Reply{Text: msgRecovery, RemoveKeyboard: true}
			return nil
		}
		reply = r
		if next.Step == StepIdle {
			return store.Delete(ctx, sessionID)
		}
		return b.save(ctx, store, next)
	})
	if err != nil {
		b.logger.Error("session store failure", "session_id", sessionID, "err", err)
		return Reply{Text: msgRecovery, RemoveKeyboard: true}, err
	}
	return reply, nil
}

func (b *Bot) save(ctx context.Context, store Store, sess *Session) error {
	sess.UpdatedAt = b.now()
	return store.Save(ctx, sess.ID, sess)
}

// command extracts the name of a "/name" or "/name@bot" message.
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.Fields(text[1:])
	if len(name) == 0 {
		return "", true
	}
	cmd, _, _ := strings.Cut(name[0], "@")
	return strings.ToLower(cmd), true
}

func (b *Bot) advance(ctx context.Context, sess *Session, text string) (Reply, error) {
	switch sess.Step {
	case StepIdle:
		return b.greet(sess), nil
	case StepDepartureQuery:
		return b.pickStation(ctx, sess, text, "departing")
	case StepDepartureChoice:
		return b.choose(sess, text, "departing")
	case StepArrivalQuery:
		return b.pickStation(ctx, sess, text, "arrival")
	case StepArrivalChoice:
		return b.choose(sess, text, "arrival")
	case StepDate:
		return b.enterDate(ctx, sess, text)
	case StepDaysBefore:
		return b.enterDaysBefore(sess, text)
	case StepDaysAfter:
		return b.findExtended(ctx, sess, text)
	}
	return Reply{}, fmt.Errorf("unknown step %q", sess.Step)
}

func (b *Bot) greet(sess *Session) Reply {
	sess.Step = StepDepartureQuery
	return Reply{Text: msgGreeting, RemoveKeyboard: true}
}

func (b *Bot) pickStation(ctx context.Context, sess *Session, text, role string) (Reply, error) {
	stations, err := b.stations.FindStations(ctx, text)
	if err != nil {
		return Reply{}, err
	}
	if len(stations) == 0 {
		return Reply{}, fmt.Errorf("no %s station found for name %q", role, text)
	}

	choices := make(StationChoices, len(stations))
	options := make([]string, 0, len(stations))
	for _, s := range stations {
		if _, dup := choices[s.DisplayName]; !dup {
			options = append(options, s.DisplayName)
		}
		choices[s.DisplayName] = s.ID
	}

	if role == "departing" {
		sess.DepartureChoices = choices
		sess.Step = StepDepartureChoice
	} else {
		sess.ArrivalChoices = choices
		sess.Step = StepArrivalChoice
	}
	return Reply{Text: msgPickStation, Options: options, Placeholder: msgPickStationHint}, nil
}

func (b *Bot) choose(sess *Session, text, role string) (Reply, error) {
	choices := sess.DepartureChoices
	if role == "arrival" {
		choices = sess.ArrivalChoices
	}
	id, ok := choices[text]
	if !ok {
		return Reply{}, fmt.Errorf("unknown %s station %q", role, text)
	}

	if role == "departing" {
		sess.DepartureID = id
		sess.Step = StepArrivalQuery
		return Reply{Text: msgAskArrival, RemoveKeyboard: true}, nil
	}
	sess.ArrivalID = id
	sess.Step = StepDate
	return Reply{Text: msgAskDate, RemoveKeyboard: true}, nil
}

func (b *Bot) enterDate(ctx context.Context, sess *Session, text string) (Reply, error) {
	date, err := utils.ParseDate(text, b.now())
	if err != nil {
		return Reply{}, err
	}

	day, err := b.scanner.Search(ctx, sess.DepartureID, sess.ArrivalID, date, search.Discount(b.discount))
	if err != nil {
		return Reply{}, err
	}
	if !day.Empty() {
		sess.Step = StepIdle
		return Reply{Text: render.ChatMessage(day.Solutions), RemoveKeyboard: true}, nil
	}

	sess.Date = date.Format(time.DateOnly)
	sess.Step = StepDaysBefore
	return Reply{
		Text:        fmt.Sprintf(msgNoTicketsForDate, sess.Date),
		Options:     b.dayOptions(),
		Placeholder: msgPickDaysHint,
	}, nil
}

// dayCount reads a count from the days keyboard, 0..maxDays.
func (b *Bot) dayCount(text string) (int, error) {
	n, err := utils.ParseDayCount(text, b.maxDays)
	if err != nil {
		return 0, err
	}
	if n > b.maxDays {
		return 0, fmt.Errorf("day count %d out of range", n)
	}
	return n, nil
}

func (b *Bot) enterDaysBefore(sess *Session, text string) (Reply, error) {
	n, err := b.dayCount(text)
	if err != nil {
		return Reply{}, err
	}
	sess.DaysBefore = n
	sess.Step = StepDaysAfter
	return Reply{Text: msgAskDaysAfter, Options: b.dayOptions(), Placeholder: msgPickDaysHint}, nil
}

func (b *Bot) findExtended(ctx context.Context, sess *Session, text string) (Reply, error) {
	after, err := b.dayCount(text)
	if err != nil {
		return Reply{}, err
	}
	center, err := time.ParseInLocation(time.DateOnly, sess.Date, b.now().Location())
	if err != nil {
		return Reply{}, fmt.Errorf("stored date %q: %w", sess.Date, err)
	}

	days, err := b.scanner.Scan(ctx, search.RangeQuery{
		DepartureID: sess.DepartureID,
		ArrivalID:   sess.ArrivalID,
		Center:      center,
		DaysBefore:  sess.DaysBefore,
		DaysAfter:   after,
	}, search.Discount(b.discount))
	if err != nil {
		return Reply{}, err
	}

	sess.Step = StepIdle
	solutions := search.Flatten(days)
	if len(solutions) == 0 {
		return Reply{Text: fmt.Sprintf(msgNothingFound, strings.ToLower(b.discount)), RemoveKeyboard: true}, nil
	}
	return Reply{Text: render.ChatMessage(solutions), RemoveKeyboard: true}, nil
}

func (b *Bot) dayOptions() []string {
	opts := make([]string, 0, b.maxDays+1)
	for i := 0; i <= b.maxDays; i++ {
		opts = append(opts, strconv.Itoa(i))
	}
	return opts
}
