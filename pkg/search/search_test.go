package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuriiter/freccia/pkg/models"
	"github.com/yuriiter/freccia/pkg/providers"
)

func offer(name string, price int64) models.Offer {
	return models.Offer{Name: name, Price: decimal.NewFromInt(price), ServiceName: "Standard"}
}

func TestCheap(t *testing.T) {
	f := Cheap(decimal.NewFromInt(35))

	assert.True(t, f(models.Solution{Offers: []models.Offer{offer("Base", 40), offer("Economy", 30)}}))
	assert.False(t, f(models.Solution{Offers: []models.Offer{offer("Base", 40), offer("Economy", 45)}}))
	assert.True(t, f(models.Solution{Offers: []models.Offer{offer("Economy", 35)}}), "ceiling is inclusive")
	assert.False(t, f(models.Solution{}))
}

func TestDiscount(t *testing.T) {
	f := Discount("FrecciaYOUNG")

	assert.True(t, f(models.Solution{Offers: []models.Offer{{Name: "Standard"}, offer("FrecciaYOUNG", 19)}}))
	assert.False(t, f(models.Solution{Offers: []models.Offer{{Name: "Standard"}, {Name: "Base"}}}))
}

func TestSelect_PreservesOrderWithoutMutation(t *testing.T) {
	in := []models.Solution{
		{Origin: "a", Offers: []models.Offer{offer("Base", 20)}},
		{Origin: "b", Offers: []models.Offer{offer("Base", 50)}},
		{Origin: "c", Offers: []models.Offer{offer("Base", 10)}},
	}
	snapshot := append([]models.Solution(nil), in...)

	out := Select(in, Cheap(decimal.NewFromInt(35)))
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Origin)
	assert.Equal(t, "c", out[1].Origin)
	assert.Equal(t, snapshot, in)

	assert.Len(t, Select(in, nil), 3)
	assert.NotNil(t, Select(nil, nil))
}

// fakeFinder returns canned solutions per date and records the calls.
type fakeFinder struct {
	byDate map[string][]models.Solution
	failOn string
	calls  []string
}

func (f *fakeFinder) FindSolutions(ctx context.Context, departureID, arrivalID int64, departure time.Time) ([]models.Solution, error) {
	day := departure.Format(time.DateOnly)
	f.calls = append(f.calls, day)
	if day == f.failOn {
		return nil, &providers.APIError{Status: 200, Message: "boom"}
	}
	return f.byDate[day], nil
}

var center = time.Date(2024, 4, 7, 0, 0, 0, 0, time.UTC)

func TestDates_HalfOpen(t *testing.T) {
	dates := Dates(RangeQuery{Center: center, DaysBefore: 1, DaysAfter: 1})
	require.Len(t, dates, 2)
	assert.Equal(t, "2024-04-06", dates[0].Format(time.DateOnly))
	assert.Equal(t, "2024-04-07", dates[1].Format(time.DateOnly))

	assert.Empty(t, Dates(RangeQuery{Center: center}))

	dates = Dates(RangeQuery{Center: center, DaysBefore: 0, DaysAfter: 3})
	require.Len(t, dates, 3)
	assert.Equal(t, "2024-04-09", dates[2].Format(time.DateOnly))
}

func TestScanner_Scan(t *testing.T) {
	young := models.Solution{Origin: "Milano", Offers: []models.Offer{offer("FrecciaYOUNG", 19)}}
	base := models.Solution{Origin: "Milano", Offers: []models.Offer{offer("Base", 89)}}
	finder := &fakeFinder{byDate: map[string][]models.Solution{
		"2024-04-06": {base},
		"2024-04-07": {base, young},
	}}

	var observed []string
	s := NewScanner(finder, WithDayObserver(func(d models.DayResult) {
		observed = append(observed, d.Date.Format(time.DateOnly))
	}))
	days, err := s.Scan(context.Background(), RangeQuery{
		DepartureID: 1, ArrivalID: 2, Center: center, DaysBefore: 1, DaysAfter: 1,
	}, Discount("FrecciaYOUNG"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-04-06", "2024-04-07"}, finder.calls)
	assert.Equal(t, finder.calls, observed)
	require.Len(t, days, 2)
	assert.True(t, days[0].Empty())
	assert.Equal(t, []models.Solution{young}, days[1].Solutions)
	assert.Equal(t, []models.Solution{young}, Flatten(days))
}

func TestScanner_ErrorAbortsScan(t *testing.T) {
	finder := &fakeFinder{failOn: "2024-04-06"}
	s := NewScanner(finder)

	var seen int
	err := s.Each(context.Background(), RangeQuery{Center: center, DaysBefore: 2, DaysAfter: 2}, nil, func(models.DayResult) error {
		seen++
		return nil
	})

	var apiErr *providers.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, seen, "only the day before the failure is reported")
	assert.Equal(t, []string{"2024-04-05", "2024-04-06"}, finder.calls)

	days, err := s.Scan(context.Background(), RangeQuery{Center: center, DaysBefore: 2, DaysAfter: 2}, nil)
	assert.Error(t, err)
	assert.Nil(t, days)
}

func TestScanner_CallbackErrorStops(t *testing.T) {
	finder := &fakeFinder{}
	stop := errors.New("stop")

	err := NewScanner(finder).Each(context.Background(), RangeQuery{Center: center, DaysAfter: 5}, nil, func(models.DayResult) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Len(t, finder.calls, 1)
}

func TestScanner_NegativeDays(t *testing.T) {
	finder := &fakeFinder{}
	_, err := NewScanner(finder).Scan(context.Background(), RangeQuery{Center: center, DaysBefore: -1}, nil)
	assert.ErrorIs(t, err, ErrNegativeDays)
	assert.Empty(t, finder.calls)
}

func TestScanner_Search(t *testing.T) {
	finder := &fakeFinder{byDate: map[string][]models.Solution{
		"2024-04-07": {{Offers: []models.Offer{offer("Base", 30)}}, {Offers: []models.Offer{offer("Base", 60)}}},
	}}
	day, err := NewScanner(finder).Search(context.Background(), 1, 2, center, Cheap(decimal.NewFromInt(35)))
	require.NoError(t, err)
	assert.Len(t, day.Solutions, 1)
	assert.True(t, center.Equal(day.Date))
}
