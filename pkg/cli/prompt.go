package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yuriiter/freccia/pkg/models"
	"github.com/yuriiter/freccia/pkg/providers"
	"github.com/yuriiter/freccia/pkg/render"
	"github.com/yuriiter/freccia/pkg/search"
	"github.com/yuriiter/freccia/pkg/utils"
)

// ErrNoInput is returned when standard input ends before a question is
// answered.
var ErrNoInput = errors.New("input closed")

// Unset marks a day count that should be asked interactively.
const Unset = -1

// Answers holds values given up front, typically from flags. Empty strings
// and Unset counts are asked for.
type Answers struct {
	From   string
	To     string
	Date   string
	Before int
	After  int

	MaxPrice decimal.Decimal
	// Discount switches from the price ceiling to the named offer.
	Discount string
}

// Prompt is the interactive terminal search.
type Prompt struct {
	stations providers.StationFinder
	scanner  *search.Scanner
	in       *bufio.Reader
	term     *render.Terminal
	now      func() time.Time
}

type Option func(*Prompt)

func WithClock(now func() time.Time) Option {
	return func(p *Prompt) {
		p.now = now
	}
}

func New(stations providers.StationFinder, scanner *search.Scanner, in io.Reader, term *render.Terminal, opts ...Option) *Prompt {
	p := &Prompt{
		stations: stations,
		scanner:  scanner,
		in:       bufio.NewReader(in),
		term:     term,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (a Answers) filter() (search.Filter, string) {
	if a.Discount != "" {
		return search.Discount(a.Discount), fmt.Sprintf("No %s solutions found for the date :(", a.Discount)
	}
	return search.Cheap(a.MaxPrice), "No cheap solutions found for the date :("
}

// Run asks for the trip, searches the requested date and, when nothing
// matches, the days around it.
func (p *Prompt) Run(ctx context.Context, a Answers) error {
	departure, err := p.pickStation(ctx, "departing", "a departing", a.From)
	if err != nil {
		return err
	}
	arrival, err := p.pickStation(ctx, "arrival", "an arrival", a.To)
	if err != nil {
		return err
	}
	date, err := p.date(a.Date)
	if err != nil {
		return err
	}
	utils.DebugLog("searching %d -> %d on %s", departure.ID, arrival.ID, date.Format(time.DateOnly))

	filter, notice := a.filter()
	day, err := p.scanner.Search(ctx, departure.ID, arrival.ID, date, filter)
	if err != nil {
		return err
	}
	if !day.Empty() {
		p.term.Day(day, notice)
		return nil
	}
	p.term.Notice(notice)

	before, err := p.dayCount("Enter how many days in advance you could travel: ", a.Before)
	if err != nil {
		return err
	}
	after, err := p.dayCount("Enter how many days after you could travel: ", a.After)
	if err != nil {
		return err
	}

	q := search.RangeQuery{
		DepartureID: departure.ID,
		ArrivalID:   arrival.ID,
		Center:      date,
		DaysBefore:  before,
		DaysAfter:   after,
	}
	for _, d := range search.Dates(q) {
		p.term.Progress(fmt.Sprintf("Looking for a solution for %s...", d.Format(time.DateOnly)))
		day, err := p.scanner.Search(ctx, departure.ID, arrival.ID, d, filter)
		if err != nil {
			return err
		}
		p.term.Day(day, notice)
	}
	return nil
}

func (p *Prompt) ask(question string) (string, error) {
	fmt.Fprint(p.term.Writer(), question)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// pickStation resolves a station name, listing the candidates and asking
// for an index. A prefilled name is still listed and confirmed.
func (p *Prompt) pickStation(ctx context.Context, role, article, name string) (models.Station, error) {
	for {
		if name == "" {
			var err error
			if name, err = p.ask(fmt.Sprintf("Enter the %s station name:\n", role)); err != nil {
				return models.Station{}, err
			}
			if name == "" {
				continue
			}
		}

		stations, err := p.stations.FindStations(ctx, name)
		if err != nil {
			return models.Station{}, err
		}
		if len(stations) == 0 {
			p.term.Notice(fmt.Sprintf("No stations found for %q", name))
			name = ""
			continue
		}

		p.term.Stations(stations)
		for {
			answer, err := p.ask(fmt.Sprintf("Select %s station [0-%d]: ", article, len(stations)-1))
			if err != nil {
				return models.Station{}, err
			}
			i, err := strconv.Atoi(answer)
			if err == nil && i >= 0 && i < len(stations) {
				return stations[i], nil
			}
			p.term.Notice(fmt.Sprintf("Invalid choice %q", answer))
		}
	}
}

func (p *Prompt) date(prefill string) (time.Time, error) {
	input := prefill
	for {
		if input != "" {
			d, err := utils.ParseDate(input, p.now())
			if err == nil {
				return d, nil
			}
			p.term.Notice(err.Error())
		}
		var err error
		if input, err = p.ask("Enter a departure date (format: yyyy-mm-dd): \n"); err != nil {
			return time.Time{}, err
		}
	}
}

func (p *Prompt) dayCount(question string, prefill int) (int, error) {
	if prefill >= 0 {
		return prefill, nil
	}
	for {
		answer, err := p.ask(question)
		if err != nil {
			return 0, err
		}
		n, err := utils.ParseDayCount(answer, 0)
		if err == nil {
			return n, nil
		}
		p.term.Notice(err.Error())
	}
}
