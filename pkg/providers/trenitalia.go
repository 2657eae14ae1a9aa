package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yuriiter/freccia/pkg/models"
	"github.com/yuriiter/freccia/pkg/utils"
)

const (
	DefaultBaseURL = "https://www.lefrecce.it/Channels.Website.BFF.WEB/website"

	// PageSize is both the station search limit and the solutions page size.
	PageSize = 10

	maxBodyBytes = 8 << 20
)

type TrenitaliaProvider struct {
	baseURL string
	client  *http.Client
}

type Option func(*TrenitaliaProvider)

func WithHTTPClient(c *http.Client) Option {
	return func(t *TrenitaliaProvider) {
		t.client = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(t *TrenitaliaProvider) {
		t.client = &http.Client{Timeout: d}
	}
}

func NewTrenitalia(baseURL string, opts ...Option) *TrenitaliaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	t := &TrenitaliaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TrenitaliaProvider) Name() string { return "Trenitalia" }

func (t *TrenitaliaProvider) FindStations(ctx context.Context, name string) ([]models.Station, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []models.Station{}, nil
	}
	utils.DebugLog("Trenitalia: station search for '%s'", name)

	q := url.Values{}
	q.Set("name", name)
	q.Set("limit", strconv.Itoa(PageSize))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/locations/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	body, err := t.do(req)
	if err != nil {
		return nil, fmt.Errorf("station search %q: %w", name, err)
	}

	if err := envelopeError(http.StatusOK, body); err != nil {
		return nil, err
	}
	var records []stationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &DecodeError{Record: "stations", Err: err}
	}

	stations := make([]models.Station, 0, len(records))
	for _, r := range records {
		s, err := r.decode()
		if err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, nil
}

// FindSolutions pages through the solutions endpoint until a page yields
// fewer than PageSize saleable solutions. Any failing page discards what was
// collected so far.
func (t *TrenitaliaProvider) FindSolutions(ctx context.Context, departureID, arrivalID int64, departure time.Time) ([]models.Solution, error) {
	solutions := []models.Solution{}
	for page := 0; ; page++ {
		batch, err := t.solutionsPage(ctx, newSolutionsRequest(departureID, arrivalID, departure, page*PageSize))
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, batch...)
		if len(batch) < PageSize {
			return solutions, nil
		}
	}
}

func (t *TrenitaliaProvider) solutionsPage(ctx context.Context, body solutionsRequest) ([]models.Solution, error) {
	utils.DebugLog("Trenitalia: solutions %d -> %d at %s (offset %d)",
		body.DepartureLocationID, body.ArrivalLocationID, body.DepartureTime, body.Criteria.Offset)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/ticket/solutions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := t.do(req)
	if err != nil {
		return nil, fmt.Errorf("solutions search: %w", err)
	}

	var resp solutionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &DecodeError{Record: "solutions response", Err: err}
	}
	if resp.Type == "ERROR" {
		return nil, &APIError{Status: http.StatusOK, Message: resp.Message}
	}
	if resp.Solutions == nil {
		return nil, &DecodeError{Record: "solutions response", Field: "solutions", Err: errMissingField}
	}

	var batch []models.Solution
	for _, r := range resp.Solutions {
		ok, err := r.saleable()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		s, err := r.decode()
		if err != nil {
			return nil, err
		}
		batch = append(batch, s)
	}
	return batch, nil
}

// do executes the request and returns the body of a 2xx response. Other
// statuses become an APIError when the body is the provider's error
// envelope, a plain error otherwise.
func (t *TrenitaliaProvider) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if err := envelopeError(resp.StatusCode, body); err != nil {
			return nil, err
		}
		excerpt := body
		if len(excerpt) > 1024 {
			excerpt = excerpt[:1024]
		}
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	return body, nil
}

func envelopeError(status int, body []byte) error {
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Type == "ERROR" {
		return &APIError{Status: status, Message: env.Message}
	}
	return nil
}
