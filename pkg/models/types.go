package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Station struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type Offer struct {
	Name        string
	Price       decimal.Decimal
	ServiceName string
}

// Solution is one bookable origin -> destination option. Offers only holds
// saleable offers that carry a price.
type Solution struct {
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Duration      string
	Offers        []Offer
}

func (s Solution) HasOffer(name string) bool {
	for _, o := range s.Offers {
		if o.Name == name {
			return true
		}
	}
	return false
}

// MinPrice returns the cheapest offer price. ok is false when the solution
// has no offers.
func (s Solution) MinPrice() (price decimal.Decimal, ok bool) {
	for i, o := range s.Offers {
		if i == 0 || o.Price.LessThan(price) {
			price = o.Price
		}
	}
	return price, len(s.Offers) > 0
}

// DayResult holds the filtered solutions found for a single travel date.
type DayResult struct {
	Date      time.Time
	Solutions []Solution
}

func (d DayResult) Empty() bool { return len(d.Solutions) == 0 }
