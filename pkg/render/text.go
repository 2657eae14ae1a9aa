package render

import (
	"fmt"
	"strings"

	"github.com/yuriiter/freccia/pkg/models"
)

const (
	dateTimeLayout = "2006-01-02 15:04"
	clockLayout    = "15:04"
)

// Price formats the cheapest offer of s, or "n/a" when it has none.
func Price(s models.Solution) string {
	price, ok := s.MinPrice()
	if !ok {
		return "n/a"
	}
	return price.StringFixed(2) + " €"
}

// SolutionLine renders one solution as
// "Origin - Destination, 2024-04-07 07:10-10:20 (3h 10min): 19.00 €".
func SolutionLine(s models.Solution) string {
	return fmt.Sprintf("%s - %s, %s-%s (%s): %s",
		s.Origin,
		s.Destination,
		s.DepartureTime.Format(dateTimeLayout),
		s.ArrivalTime.Format(clockLayout),
		s.Duration,
		Price(s),
	)
}

// ChatMessage is the chat-bot reply listing every solution, one per line.
func ChatMessage(solutions []models.Solution) string {
	var b strings.Builder
	for _, s := range solutions {
		b.WriteString("\n")
		b.WriteString(SolutionLine(s))
	}
	return b.String()
}

// Markdown renders a day's solutions as a table for the terminal renderer.
func Markdown(day models.DayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Solutions for %s\n\n", day.Date.Format("2006-01-02"))
	b.WriteString("| From | To | Departure | Arrival | Duration | From price |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, s := range day.Solutions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			s.Origin,
			s.Destination,
			s.DepartureTime.Format(clockLayout),
			s.ArrivalTime.Format(clockLayout),
			s.Duration,
			Price(s),
		)
	}
	return b.String()
}
