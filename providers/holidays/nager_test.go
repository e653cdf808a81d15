package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skanade/tripweaver/model"
)

func TestNewClient(t *testing.T) {
	client := NewClient()
	assert.Equal(t, "https://date.nager.at/api/v3", client.BaseURL)
	assert.NotNil(t, client.HTTPClient)
}

func testServer(t *testing.T, byYear map[int][]Holiday) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var year int
		var cc string
		_, err := fmt.Sscanf(r.URL.Path, "/PublicHolidays/%d/%s", &year, &cc)
		require.NoError(t, err)
		require.Equal(t, "FR", cc)
		json.NewEncoder(w).Encode(byYear[year])
	}))
}

func TestGetPublicHolidays(t *testing.T) {
	srv := testServer(t, map[int][]Holiday{
		2024: {
			{Date: "2024-07-14", Name: "Bastille Day", CountryCode: "FR"},
			{Date: "2024-12-25", Name: "Christmas Day", CountryCode: "FR"},
		},
	})
	defer srv.Close()

	client := NewClient()
	client.BaseURL = srv.URL

	holidays, err := client.GetPublicHolidays(context.Background(), 2024, "FR")
	assert.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "Bastille Day", holidays[0].Name)
}

func TestGetPublicHolidaysServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient()
	client.BaseURL = srv.URL

	_, err := client.GetPublicHolidays(context.Background(), 2024, "FR")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHolidaysInRange(t *testing.T) {
	srv := testServer(t, map[int][]Holiday{
		2024: {
			{Date: "2024-07-14", Name: "Bastille Day"},
			{Date: "2024-12-25", Name: "Christmas Day"},
			{Date: "not-a-date", Name: "garbled entry"},
		},
		2025: {
			{Date: "2025-01-01", Name: "New Year's Day"},
			{Date: "2025-04-21", Name: "Easter Monday"},
		},
	})
	defer srv.Close()

	client := NewClient()
	client.BaseURL = srv.URL

	t.Run("within one year", func(t *testing.T) {
		got, err := client.HolidaysInRange(context.Background(), "FR",
			model.NewDate(2024, time.July, 10), model.NewDate(2024, time.July, 20))
		assert.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Bastille Day", got[0].Name)
	})

	t.Run("spanning a year boundary", func(t *testing.T) {
		// The garbled entry is skipped, not fatal.
		got, err := client.HolidaysInRange(context.Background(), "FR",
			model.NewDate(2024, time.December, 24), model.NewDate(2025, time.January, 2))
		assert.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Christmas Day", got[0].Name)
		assert.Equal(t, "New Year's Day", got[1].Name)
	})

	t.Run("no holidays in window", func(t *testing.T) {
		got, err := client.HolidaysInRange(context.Background(), "FR",
			model.NewDate(2024, time.February, 1), model.NewDate(2024, time.February, 5))
		assert.NoError(t, err)
		assert.Empty(t, got)
	})
}
