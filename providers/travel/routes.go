package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/skanade/tripweaver/log"
	"github.com/skanade/tripweaver/model"
	"github.com/skanade/tripweaver/orm"
)

const routesFieldMask = "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline"

// RoutesClient queries the Routes API (computeRoutes) and falls back to
// the heuristic on any upstream failure. It never returns an error.
type RoutesClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Estimator

	// Optional response cache; nil disables caching.
	CacheDB  *gorm.DB
	CacheTTL time.Duration
}

var _ Estimator = (*RoutesClient)(nil)

// NewRoutesClient creates a Routes API client with the heuristic fallback.
func NewRoutesClient(apiKey, baseURL string, timeout time.Duration) *RoutesClient {
	if baseURL == "" {
		baseURL = "https://routes.googleapis.com"
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RoutesClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Fallback:   &HeuristicEstimator{},
		CacheTTL:   24 * time.Hour,
	}
}

type routesRequest struct {
	Origin      routesWaypoint `json:"origin"`
	Destination routesWaypoint `json:"destination"`
	TravelMode  string         `json:"travelMode"`
}

type routesWaypoint struct {
	Location struct {
		LatLng struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"latLng"`
	} `json:"location"`
}

type routesResponse struct {
	Routes []struct {
		Duration       string `json:"duration"`
		DistanceMeters int    `json:"distanceMeters"`
		Polyline       struct {
			EncodedPolyline string `json:"encodedPolyline"`
		} `json:"polyline"`
	} `json:"routes"`
}

// Estimate implements Estimator. Any upstream problem (missing coords,
// timeout, non-200, empty routes, bad duration) silently degrades to
// the heuristic.
func (c *RoutesClient) Estimate(ctx context.Context, origin, dest *model.LatLng, mode model.TravelMode) (Estimate, error) {
	if origin == nil || dest == nil || c.APIKey == "" {
		return c.Fallback.Estimate(ctx, origin, dest, mode)
	}

	est, err := c.computeRoute(ctx, *origin, *dest, mode)
	if err != nil {
		log.Warnf(ctx, "routes api failed, using heuristic: %v", err)
		return c.Fallback.Estimate(ctx, origin, dest, mode)
	}
	return est, nil
}

func (c *RoutesClient) computeRoute(ctx context.Context, origin, dest model.LatLng, mode model.TravelMode) (Estimate, error) {
	cacheKey := orm.CacheKey("routes",
		fmt.Sprintf("%.5f,%.5f", origin.Lat, origin.Lng),
		fmt.Sprintf("%.5f,%.5f", dest.Lat, dest.Lng),
		string(mode))
	if c.CacheDB != nil {
		if entry, err := orm.GetCacheEntry(c.CacheDB, cacheKey); err == nil {
			var cached Estimate
			if json.Unmarshal(entry.Value, &cached) == nil {
				return cached, nil
			}
		}
	}

	var req routesRequest
	req.Origin.Location.LatLng.Latitude = origin.Lat
	req.Origin.Location.LatLng.Longitude = origin.Lng
	req.Destination.Location.LatLng.Latitude = dest.Lat
	req.Destination.Location.LatLng.Longitude = dest.Lng
	req.TravelMode = string(mode)

	body, err := json.Marshal(req)
	if err != nil {
		return Estimate{}, fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/directions/v2:computeRoutes"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Estimate{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.APIKey)
	httpReq.Header.Set("X-Goog-FieldMask", routesFieldMask)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return Estimate{}, fmt.Errorf("routes request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Estimate{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Estimate{}, fmt.Errorf("routes api status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed routesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Estimate{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Routes) == 0 {
		return Estimate{}, fmt.Errorf("empty routes")
	}

	route := parsed.Routes[0]
	minutes, err := parseDurationMinutes(route.Duration)
	if err != nil {
		return Estimate{}, err
	}

	est := Estimate{DurationMinutes: minutes}
	if route.DistanceMeters > 0 {
		dist := route.DistanceMeters
		est.DistanceMeters = &dist
	}
	if route.Polyline.EncodedPolyline != "" {
		poly := route.Polyline.EncodedPolyline
		est.Polyline = &poly
	}

	if c.CacheDB != nil {
		if payload, err := json.Marshal(est); err == nil {
			_ = orm.SetCacheEntry(c.CacheDB, cacheKey, payload, c.CacheTTL)
		}
	}
	return est, nil
}

// parseDurationMinutes converts the API's "<integer>s" duration into
// ceiling minutes with a floor of 1.
func parseDurationMinutes(s string) (int, error) {
	if !strings.HasSuffix(s, "s") {
		return 0, fmt.Errorf("unexpected duration format %q", s)
	}
	seconds, err := strconv.Atoi(strings.TrimSuffix(s, "s"))
	if err != nil {
		return 0, fmt.Errorf("unexpected duration format %q", s)
	}
	minutes := int(math.Ceil(float64(seconds) / 60))
	if minutes < 1 {
		minutes = 1
	}
	return minutes, nil
}
