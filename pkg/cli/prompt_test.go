package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuriiter/freccia/pkg/models"
	"github.com/yuriiter/freccia/pkg/providers"
	"github.com/yuriiter/freccia/pkg/render"
	"github.com/yuriiter/freccia/pkg/search"
)

type stationsByName map[string][]models.Station

func (s stationsByName) FindStations(ctx context.Context, name string) ([]models.Station, error) {
	return s[name], nil
}

type solutionsByDate struct {
	days     map[string][]models.Solution
	calls    []string
	err      error
	onSearch func(date string)
}

func (s *solutionsByDate) FindSolutions(ctx context.Context, departureID, arrivalID int64, departure time.Time) ([]models.Solution, error) {
	key := departure.Format(time.DateOnly)
	s.calls = append(s.calls, key)
	if s.onSearch != nil {
		s.onSearch(key)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.days[key], nil
}

var stations = stationsByName{
	"Milano": {
		{ID: 1, DisplayName: "Milano Centrale"},
		{ID: 2, DisplayName: "Milano Rogoredo"},
	},
	"Roma": {{ID: 3, DisplayName: "Roma Termini"}},
}

func trip(day int, offers ...models.Offer) models.Solution {
	return models.Solution{
		Origin:        "Milano Centrale",
		Destination:   "Roma Termini",
		DepartureTime: time.Date(2024, 4, day, 7, 10, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2024, 4, day, 10, 20, 0, 0, time.UTC),
		Duration:      "3h 10min",
		Offers:        offers,
	}
}

func offer(name, price string) models.Offer {
	return models.Offer{Name: name, Price: decimal.RequireFromString(price)}
}

func defaults() Answers {
	return Answers{Before: Unset, After: Unset, MaxPrice: decimal.NewFromInt(35)}
}

func run(t *testing.T, sols *solutionsByDate, a Answers, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	p := New(stations, search.NewScanner(sols), strings.NewReader(input), render.NewPlainTerminal(&out),
		WithClock(func() time.Time { return time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC) }))
	err := p.Run(context.Background(), a)
	return out.String(), err
}

func TestPrompt_FoundOnDate(t *testing.T) {
	sols := &solutionsByDate{days: map[string][]models.Solution{
		"2024-04-07": {trip(7, offer("Base", "89")), trip(7, offer("Base", "49"), offer("Economy", "29.9"))},
	}}

	out, err := run(t, sols, defaults(), "Milano\n0\nRoma\n0\n2024-04-07\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Enter the departing station name:\n")
	assert.Contains(t, out, "0: Milano Centrale\n1: Milano Rogoredo\n")
	assert.Contains(t, out, "Select a departing station [0-1]: ")
	assert.Contains(t, out, "Select an arrival station [0-0]: ")
	assert.Contains(t, out, "\nSolutions for 2024-04-07:\n")
	assert.Contains(t, out, "Milano Centrale - Roma Termini, 2024-04-07 07:10-10:20 (3h 10min): 29.90 €")
	assert.NotContains(t, out, "89.00")
	assert.Equal(t, []string{"2024-04-07"}, sols.calls)
}

func TestPrompt_ScansAroundDate(t *testing.T) {
	sols := &solutionsByDate{days: map[string][]models.Solution{
		"2024-04-06": {trip(6, offer("Economy", "19"))},
	}}

	out, err := run(t, sols, defaults(), "Milano\n1\nRoma\n0\n2024-04-07\n1\n2\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-04-07", "2024-04-06", "2024-04-07", "2024-04-08"}, sols.calls)
	assert.Contains(t, out, "Enter how many days in advance you could travel: ")
	assert.Contains(t, out, "Enter how many days after you could travel: ")
	assert.Contains(t, out, "Looking for a solution for 2024-04-06...\n\nSolutions for 2024-04-06:")
	assert.Contains(t, out, "Looking for a solution for 2024-04-08...\nNo cheap solutions found for the date :(")
	assert.Equal(t, 3, strings.Count(out, "No cheap solutions found for the date :("))
}

func TestPrompt_AnnouncesDayBeforeSearching(t *testing.T) {
	var out bytes.Buffer
	announced := map[string]bool{}
	sols := &solutionsByDate{}
	sols.onSearch = func(date string) {
		announced[date] = strings.HasSuffix(out.String(), "Looking for a solution for "+date+"...\n")
	}
	p := New(stations, search.NewScanner(sols), strings.NewReader("0\n0\n"), render.NewPlainTerminal(&out))

	err := p.Run(context.Background(), Answers{From: "Milano", To: "Roma", Date: "2024-04-07", Before: 1, After: 1, MaxPrice: decimal.NewFromInt(35)})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-04-07", "2024-04-06", "2024-04-07"}, sols.calls)
	assert.True(t, announced["2024-04-06"])
	assert.True(t, announced["2024-04-07"])
}

func TestPrompt_PrefilledAnswers(t *testing.T) {
	sols := &solutionsByDate{days: map[string][]models.Solution{
		"2024-04-05": {trip(5, offer("FrecciaYOUNG", "19"))},
	}}
	a := Answers{From: "Milano", To: "Roma", Date: "07.04.2024", Before: 2, After: 0, Discount: "FrecciaYOUNG"}

	out, err := run(t, sols, a, "0\n0\n")
	require.NoError(t, err)

	assert.NotContains(t, out, "station name")
	assert.NotContains(t, out, "departure date")
	assert.Equal(t, []string{"2024-04-07", "2024-04-05", "2024-04-06"}, sols.calls)
	assert.Contains(t, out, "No FrecciaYOUNG solutions found for the date :(")
	assert.Contains(t, out, "2024-04-05 07:10-10:20 (3h 10min): 19.00 €")
}

func TestPrompt_RepromptsOnBadInput(t *testing.T) {
	sols := &solutionsByDate{days: map[string][]models.Solution{
		"2024-04-07": {trip(7, offer("Economy", "30"))},
	}}

	input := strings.Join([]string{
		"Atlantide", // no stations
		"Milano",
		"5", // out of range
		"x",
		"0",
		"Roma",
		"0",
		"7 aprile", // bad date
		"2024-04-07",
	}, "\n") + "\n"

	out, err := run(t, sols, defaults(), input)
	require.NoError(t, err)

	assert.Contains(t, out, `No stations found for "Atlantide"`)
	assert.Contains(t, out, `Invalid choice "5"`)
	assert.Contains(t, out, `Invalid choice "x"`)
	assert.Contains(t, out, "invalid date")
	assert.Equal(t, 2, strings.Count(out, "Enter a departure date"))
	assert.Contains(t, out, "Solutions for 2024-04-07")
}

func TestPrompt_InputEnds(t *testing.T) {
	_, err := run(t, &solutionsByDate{}, defaults(), "Milano\n")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestPrompt_UpstreamFailure(t *testing.T) {
	apiErr := &providers.APIError{Status: 500, Message: "Servizio non disponibile"}
	sols := &solutionsByDate{err: apiErr}

	_, err := run(t, sols, defaults(), "Milano\n0\nRoma\n0\n2024-04-07\n")
	var target *providers.APIError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "Servizio non disponibile", target.Message)
}
