package bot

import (
	"context"
	"errors"
	"maps"
	"time"
)

// ErrSessionNotFound is returned by a Store when no session is stored under
// the given id.
var ErrSessionNotFound = errors.New("session not found")

// Step is the input a conversation is waiting for.
type Step string

const (
	StepIdle            Step = "idle"
	StepDepartureQuery  Step = "await_departure_query"
	StepDepartureChoice Step = "await_departure_choice"
	StepArrivalQuery    Step = "await_arrival_query"
	StepArrivalChoice   Step = "await_arrival_choice"
	StepDate            Step = "await_date"
	StepDaysBefore      Step = "await_days_before"
	StepDaysAfter       Step = "await_days_after"
)

// StationChoices maps the display names offered on the keyboard to station
// ids.
type StationChoices map[string]int64

// Session is the state of one user's conversation.
type Session struct {
	ID               string         `json:"id"`
	Step             Step           `json:"step"`
	DepartureChoices StationChoices `json:"departure_choices,omitempty"`
	DepartureID      int64          `json:"departure_id,omitempty"`
	ArrivalChoices   StationChoices `json:"arrival_choices,omitempty"`
	ArrivalID        int64          `json:"arrival_id,omitempty"`
	// Date is the requested travel date, yyyy-mm-dd.
	Date       string    `json:"date,omitempty"`
	DaysBefore int       `json:"days_before,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id, Step: StepIdle}
}

func (s *Session) Clone() *Session {
	c := *s
	c.DepartureChoices = maps.Clone(s.DepartureChoices)
	c.ArrivalChoices = maps.Clone(s.ArrivalChoices)
	return &c
}

// Store persists conversation state between turns.
type Store interface {
	Save(ctx context.Context, id string, s *Session) error
	// Load returns ErrSessionNotFound for unknown ids.
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
