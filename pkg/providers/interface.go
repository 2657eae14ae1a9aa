package providers

import (
	"context"
	"time"

	"github.com/yuriiter/freccia/pkg/models"
)

type StationFinder interface {
	FindStations(ctx context.Context, name string) ([]models.Station, error)
}

type SolutionFinder interface {
	FindSolutions(ctx context.Context, departureID, arrivalID int64, departure time.Time) ([]models.Solution, error)
}

type Provider interface {
	Name() string
	StationFinder
	SolutionFinder
}
