package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"soldage-iot-backend/internal/telemetry"
)

const readingsFilterPath = "/readings/filters"

// RESTSource queries the upstream readings API with a bearer token.
type RESTSource struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Client  *http.Client
}

func NewRESTSource(baseURL, token string, timeout time.Duration) *RESTSource {
	return &RESTSource{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, Timeout: timeout}
}

type apiError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *RESTSource) FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := url.Parse(s.BaseURL + readingsFilterPath)
	if err != nil {
		return nil, fmt.Errorf("parse readings url: %w", err)
	}
	params := url.Values{}
	if q.MachineID != "" {
		params.Set("machine_id", q.MachineID)
	}
	params.Set("begin_date", q.BeginAt.UTC().Format(time.RFC3339))
	params.Set("final_date", q.EndAt.UTC().Format(time.RFC3339))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: s.Timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read readings response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("readings api returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("readings api returned %d", resp.StatusCode)
	}
	var payloads []readingPayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("decode readings response: %w", err)
	}
	return records(payloads), nil
}
