package search

import (
	"github.com/shopspring/decimal"
	"github.com/yuriiter/freccia/pkg/models"
)

// DefaultDiscountOffer is the youth fare class the chat-bot looks for.
const DefaultDiscountOffer = "FrecciaYOUNG"

// Filter decides whether a solution belongs to a result set. A nil Filter
// accepts everything.
type Filter func(models.Solution) bool

// Cheap keeps solutions with at least one offer priced at or below max.
func Cheap(max decimal.Decimal) Filter {
	return func(s models.Solution) bool {
		for _, o := range s.Offers {
			if o.Price.LessThanOrEqual(max) {
				return true
			}
		}
		return false
	}
}

// Discount keeps solutions offering the named fare class.
func Discount(offerName string) Filter {
	return func(s models.Solution) bool {
		return s.HasOffer(offerName)
	}
}

// Select returns the solutions accepted by f, in input order.
func Select(solutions []models.Solution, f Filter) []models.Solution {
	out := make([]models.Solution, 0, len(solutions))
	for _, s := range solutions {
		if f == nil || f(s) {
			out = append(out, s)
		}
	}
	return out
}
