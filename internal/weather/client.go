package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
)

// DefaultURL is the Open-Meteo forecast endpoint.
const DefaultURL = "https://api.open-meteo.com/v1/forecast"

type forecastResponse struct {
	Current struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode *int     `json:"weather_code"`
		WindSpeed   float64  `json:"wind_speed_10m"`
	} `json:"current"`
}

// Client fetches current conditions for a fixed location.
type Client struct {
	baseURL string
	loc     domain.Location
	client  *http.Client
	log     *zap.Logger
	group   singleflight.Group
}

func NewClient(baseURL string, loc domain.Location, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: baseURL,
		loc:     loc,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// Fetch returns the current weather, or domain.SentinelSnapshot if the
// provider cannot be reached or answers with something unusable.
// Concurrent callers share one in-flight request.
func (c *Client) Fetch(ctx context.Context) domain.Snapshot {
	v, _, _ := c.group.Do("current", func() (interface{}, error) {
		s, err := c.fetch(context.WithoutCancel(ctx))
		if err != nil {
			c.log.Warn("weather unavailable, using sentinel", zap.Error(err))
			return domain.SentinelSnapshot, nil
		}
		return s, nil
	})
	return v.(domain.Snapshot)
}

func (c *Client) fetch(ctx context.Context) (domain.Snapshot, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.loc.Longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code,wind_speed_10m")
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Snapshot{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode response: %w", err)
	}
	if data.Current.WeatherCode == nil {
		return domain.Snapshot{}, fmt.Errorf("response has no current weather_code")
	}
	if data.Current.Temperature == nil {
		return domain.Snapshot{}, fmt.Errorf("response has no current temperature_2m")
	}

	code := *data.Current.WeatherCode
	return domain.Snapshot{
		TemperatureC: *data.Current.Temperature,
		WindSpeed:    data.Current.WindSpeed,
		Code:         code,
		Condition:    domain.DescribeCode(code),
	}, nil
}
