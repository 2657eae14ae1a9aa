package providers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/yuriiter/freccia/pkg/models"
)

const statusSaleable = "SALEABLE"

var errMissingField = errors.New("missing required field")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates a wire record and turns the first failure into a
// DecodeError naming the offending json field.
func check(record string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		return &DecodeError{Record: record, Field: field, Err: errMissingField}
	}
	return &DecodeError{Record: record, Err: err}
}

type stationRecord struct {
	ID          *int64  `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"required"`
	DisplayName *string `json:"displayName" validate:"required"`
}

func (r stationRecord) decode() (models.Station, error) {
	if err := check("station", r); err != nil {
		return models.Station{}, err
	}
	return models.Station{ID: *r.ID, Name: *r.Name, DisplayName: *r.DisplayName}, nil
}

type solutionsRequest struct {
	DepartureLocationID   int64           `json:"departureLocationId"`
	ArrivalLocationID     int64           `json:"arrivalLocationId"`
	DepartureTime         string          `json:"departureTime"`
	Adults                int             `json:"adults"`
	Children              int             `json:"children"`
	Criteria              searchCriteria  `json:"criteria"`
	AdvancedSearchRequest advancedRequest `json:"advancedSearchRequest"`
}

type searchCriteria struct {
	FrecceOnly   bool   `json:"frecceOnly"`
	RegionalOnly bool   `json:"regionalOnly"`
	NoChanges    bool   `json:"noChanges"`
	Order        string `json:"order"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
}

type advancedRequest struct {
	BestFare bool `json:"bestFare"`
}

func newSolutionsRequest(departureID, arrivalID int64, departure time.Time, offset int) solutionsRequest {
	return solutionsRequest{
		DepartureLocationID: departureID,
		ArrivalLocationID:   arrivalID,
		DepartureTime:       departure.Format(requestTimeLayout),
		Adults:              1,
		Children:            0,
		Criteria: searchCriteria{
			FrecceOnly:   true,
			RegionalOnly: false,
			NoChanges:    true,
			Order:        "DEPARTURE_DATE",
			Limit:        PageSize,
			Offset:       offset,
		},
		AdvancedSearchRequest: advancedRequest{BestFare: false},
	}
}

// errorEnvelope is the body the provider sends instead of a payload when a
// request fails.
type errorEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type solutionsResponse struct {
	errorEnvelope
	Solutions []solutionRecord `json:"solutions"`
}

type solutionRecord struct {
	Solution *solutionHeader `json:"solution" validate:"required"`
	Grids    []gridRecord    `json:"grids" validate:"required"`
}

type solutionHeader struct {
	Status        *string `json:"status" validate:"required"`
	Origin        *string `json:"origin" validate:"required"`
	Destination   *string `json:"destination" validate:"required"`
	DepartureTime *string `json:"departureTime" validate:"required"`
	ArrivalTime   *string `json:"arrivalTime" validate:"required"`
	Duration      *string `json:"duration" validate:"required"`
}

type gridRecord struct {
	Services []serviceRecord `json:"services" validate:"required"`
}

type serviceRecord struct {
	Offers []offerRecord `json:"offers" validate:"required"`
}

type offerRecord struct {
	Name        *string      `json:"name" validate:"required"`
	ServiceName *string      `json:"serviceName" validate:"required"`
	Status      *string      `json:"status"`
	Price       *priceRecord `json:"price"`
}

type priceRecord struct {
	Amount *decimal.Decimal `json:"amount"`
}

// saleable reports whether the solution can be bought. A record without a
// status cannot be classified and is a decode error.
func (r solutionRecord) saleable() (bool, error) {
	if r.Solution == nil {
		return false, &DecodeError{Record: "solution", Field: "solution", Err: errMissingField}
	}
	if r.Solution.Status == nil {
		return false, &DecodeError{Record: "solution", Field: "solution.status", Err: errMissingField}
	}
	return *r.Solution.Status == statusSaleable, nil
}

func (r solutionRecord) decode() (models.Solution, error) {
	if err := check("solution", r); err != nil {
		return models.Solution{}, err
	}
	h := r.Solution
	departure, err := parseTime("solution.departureTime", *h.DepartureTime)
	if err != nil {
		return models.Solution{}, err
	}
	arrival, err := parseTime("solution.arrivalTime", *h.ArrivalTime)
	if err != nil {
		return models.Solution{}, err
	}

	offers := []models.Offer{}
	for _, grid := range r.Grids {
		if err := check("grid", grid); err != nil {
			return models.Solution{}, err
		}
		for _, service := range grid.Services {
			if err := check("service", service); err != nil {
				return models.Solution{}, err
			}
			for _, o := range service.Offers {
				offer, keep, err := o.decode()
				if err != nil {
					return models.Solution{}, err
				}
				if keep {
					offers = append(offers, offer)
				}
			}
		}
	}

	return models.Solution{
		Origin:        *h.Origin,
		Destination:   *h.Destination,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Duration:      *h.Duration,
		Offers:        offers,
	}, nil
}

// decode returns keep=false for offers without a price or not on sale.
func (o offerRecord) decode() (models.Offer, bool, error) {
	if o.Price == nil || o.Price.Amount == nil {
		return models.Offer{}, false, nil
	}
	if o.Status == nil {
		return models.Offer{}, false, &DecodeError{Record: "offer", Field: "status", Err: errMissingField}
	}
	if *o.Status != statusSaleable {
		return models.Offer{}, false, nil
	}
	if err := check("offer", o); err != nil {
		return models.Offer{}, false, err
	}
	return models.Offer{Name: *o.Name, Price: *o.Price.Amount, ServiceName: *o.ServiceName}, true, nil
}

const requestTimeLayout = "2006-01-02T15:04:05"

func parseTime(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(requestTimeLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, &DecodeError{Record: "solution", Field: field, Err: fmt.Errorf("unparseable time %q", value)}
}
