// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/darkjarvis/darkjarvis/internal/config"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("weather API key not configured")
	// ErrCityNotFound is returned for unknown cities.
	ErrCityNotFound = errors.New("city not found")
	// ErrInvalidKey is returned when the API rejects the key.
	ErrInvalidKey = errors.New("invalid weather API key")
)

const defaultTimeout = 15 * time.Second

// Report is the current weather for one city.
type Report struct {
	City        string
	Country     string
	Description string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	WindSpeed   float64
}

type apiResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// Client queries the current-weather endpoint.
type Client struct {
	hc       *http.Client
	endpoint string
	apiKey   string
	units    string
	language string
}

// NewClient creates a client. hc may be nil.
func NewClient(cfg config.WeatherConfig, hc *http.Client) *Client {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	endpoint, _ := strings.CutSuffix(cfg.BaseURL, "/")
	return &Client{
		hc:       hc,
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		units:    cfg.Units,
		language: cfg.Language,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Current returns the current weather for city.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)
	if c.language != "" {
		q.Set("lang", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	case http.StatusUnauthorized:
		return nil, ErrInvalidKey
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	r := &Report{
		City:        out.Name,
		Country:     out.Sys.Country,
		Temperature: out.Main.Temp,
		FeelsLike:   out.Main.FeelsLike,
		Humidity:    out.Main.Humidity,
		WindSpeed:   out.Wind.Speed,
	}
	if len(out.Weather) > 0 {
		r.Description = out.Weather[0].Description
	}
	return r, nil
}

// Format renders r as a short chat message.
func (r *Report) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌤 %s", r.City)
	if r.Country != "" {
		fmt.Fprintf(&b, ", %s", r.Country)
	}
	if r.Description != "" {
		fmt.Fprintf(&b, ": %s", r.Description)
	}
	fmt.Fprintf(&b, "\n🌡 %.1f° (hissedilen %.1f°)", r.Temperature, r.FeelsLike)
	fmt.Fprintf(&b, "\n💧 Nem: %%%d  💨 Rüzgâr: %.1f m/s", r.Humidity, r.WindSpeed)
	return b.String()
}
