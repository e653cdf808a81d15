// Package holidays wraps the Nager.Date public holiday API. Holiday
// context feeds the macro planner prompt so day themes can account for
// closures and crowds.
package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skanade/tripweaver/model"
)

// Client handles Nager.Date API requests.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new Nager.Date API client.
func NewClient() *Client {
	return &Client{
		BaseURL:    "https://date.nager.at/api/v3",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Holiday represents a public holiday from Nager.Date API.
type Holiday struct {
	Date        string   `json:"date"`
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Fixed       bool     `json:"fixed"`
	Global      bool     `json:"global"`
	Counties    []string `json:"counties"`
	Types       []string `json:"types"`
}

// GetPublicHolidays returns public holidays for a specific country and year.
func (c *Client) GetPublicHolidays(ctx context.Context, year int, countryCode string) ([]Holiday, error) {
	url := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.BaseURL, year, countryCode)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get public holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var holidays []Holiday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return holidays, nil
}

// HolidaysInRange returns the holidays falling inside [start, end],
// inclusive. Trips spanning a year boundary query both years.
func (c *Client) HolidaysInRange(ctx context.Context, countryCode string, start, end model.Date) ([]Holiday, error) {
	years := []int{start.Year()}
	if end.Year() != start.Year() {
		years = append(years, end.Year())
	}

	var out []Holiday
	for _, year := range years {
		holidays, err := c.GetPublicHolidays(ctx, year, countryCode)
		if err != nil {
			return nil, err
		}
		for _, h := range holidays {
			d, err := time.Parse("2006-01-02", h.Date)
			if err != nil {
				continue
			}
			if d.Before(start.Time) || d.After(end.Time) {
				continue
			}
			out = append(out, h)
		}
	}
	return out, nil
}
