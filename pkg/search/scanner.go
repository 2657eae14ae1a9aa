package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuriiter/freccia/pkg/models"
	"github.com/yuriiter/freccia/pkg/providers"
	"github.com/yuriiter/freccia/pkg/utils"
)

var ErrNegativeDays = errors.New("days before and after must not be negative")

// RangeQuery describes a search around Center. Offsets run over the
// half-open range [-DaysBefore, DaysAfter).
type RangeQuery struct {
	DepartureID int64
	ArrivalID   int64
	Center      time.Time
	DaysBefore  int
	DaysAfter   int
}

func (q RangeQuery) validate() error {
	if q.DaysBefore < 0 || q.DaysAfter < 0 {
		return fmt.Errorf("%w: before=%d after=%d", ErrNegativeDays, q.DaysBefore, q.DaysAfter)
	}
	return nil
}

// Dates lists the days a scan visits, in order.
func Dates(q RangeQuery) []time.Time {
	var dates []time.Time
	for offset := -q.DaysBefore; offset < q.DaysAfter; offset++ {
		dates = append(dates, q.Center.AddDate(0, 0, offset))
	}
	return dates
}

// DayObserver is told about every scanned day.
type DayObserver func(day models.DayResult)

// Scanner runs filtered fare searches for one date or a range of dates.
// Days are searched one after the other; the first failure ends the scan.
type Scanner struct {
	solutions providers.SolutionFinder
	logger    *slog.Logger
	observe   DayObserver
}

type ScannerOption func(*Scanner)

func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

func WithDayObserver(fn DayObserver) ScannerOption {
	return func(s *Scanner) {
		s.observe = fn
	}
}

func NewScanner(solutions providers.SolutionFinder, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		solutions: solutions,
		logger:    utils.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs a single filtered search for one date.
func (s *Scanner) Search(ctx context.Context, departureID, arrivalID int64, date time.Time, f Filter) (models.DayResult, error) {
	all, err := s.solutions.FindSolutions(ctx, departureID, arrivalID, date)
	if err != nil {
		return models.DayResult{}, fmt.Errorf("search %s: %w", date.Format(time.DateOnly), err)
	}
	day := models.DayResult{Date: date, Solutions: Select(all, f)}
	s.logger.Debug("day searched",
		"date", date.Format(time.DateOnly),
		"solutions", len(all),
		"matching", len(day.Solutions),
	)
	if s.observe != nil {
		s.observe(day)
	}
	return day, nil
}

// Each searches every day of the range and hands each result to fn before
// moving on. An error from the search or from fn stops the scan.
func (s *Scanner) Each(ctx context.Context, q RangeQuery, f Filter, fn func(models.DayResult) error) error {
	if err := q.validate(); err != nil {
		return err
	}
	for _, date := range Dates(q) {
		s.logger.Info("Looking for a solution", "date", date.Format(time.DateOnly))
		day, err := s.Search(ctx, q.DepartureID, q.ArrivalID, date, f)
		if err != nil {
			return err
		}
		if err := fn(day); err != nil {
			return err
		}
	}
	return nil
}

// Scan collects the per-day results of the whole range.
func (s *Scanner) Scan(ctx context.Context, q RangeQuery, f Filter) ([]models.DayResult, error) {
	var days []models.DayResult
	err := s.Each(ctx, q, f, func(day models.DayResult) error {
		days = append(days, day)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return days, nil
}

// Flatten concatenates the solutions of all days, skipping empty ones.
func Flatten(days []models.DayResult) []models.Solution {
	var out []models.Solution
	for _, d := range days {
		out = append(out, d.Solutions...)
	}
	return out
}
