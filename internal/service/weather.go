package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/osmcp/osmcp/internal/models"
	"github.com/tidwall/gjson"
)

const overviewForecastPath = "/bosai/forecast/data/overview_forecast/%s.json"

// healthCheckAreaCode is the office probed by TestConnection (Tokyo).
const healthCheckAreaCode = "130000"

// WeatherService fetches forecast overviews from the JMA bosai endpoints.
type WeatherService struct {
	client  *http.Client
	baseURL string
}

// NewWeatherService creates a client for baseURL (scheme and host, no path).
func NewWeatherService(baseURL string, timeout time.Duration) *WeatherService {
	return &WeatherService{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// OverviewURL returns the forecast overview document URL for an area code.
func (s *WeatherService) OverviewURL(areaCode string) string {
	return s.baseURL + fmt.Sprintf(overviewForecastPath, areaCode)
}

// FetchOverview downloads and parses the overview for areaCode. Non-2xx
// responses and bodies that are not JSON objects are errors.
func (s *WeatherService) FetchOverview(ctx context.Context, areaCode string) (*models.ForecastOverview, error) {
	body, err := s.get(ctx, s.OverviewURL(areaCode))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, fmt.Errorf("failed to parse forecast JSON")
	}

	return &models.ForecastOverview{
		PublishingOffice: stringField(body, "publishingOffice"),
		ReportDatetime:   stringField(body, "reportDatetime"),
		Text:             stringField(body, "text"),
	}, nil
}

// TestConnection fetches a known overview to confirm the provider is reachable.
func (s *WeatherService) TestConnection(ctx context.Context) error {
	_, err := s.get(ctx, s.OverviewURL(healthCheckAreaCode))
	return err
}

func (s *WeatherService) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create forecast request: %w", err)
	}
	req.Header.Set("User-Agent", "osmcp-weather-tool/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("forecast service returned status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read forecast response: %w", err)
	}
	return body, nil
}

// stringField returns the value at path, or "" when it is absent or null.
func stringField(body []byte, path string) string {
	v := gjson.GetBytes(body, path)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}
