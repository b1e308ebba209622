// Package geo looks up coarse location data for an (already anonymized) IP.
// The lookup is strictly best effort: every failure degrades to no location.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HaslienFotografene/haslien-short-2/config"
	"github.com/HaslienFotografene/haslien-short-2/model"
)

// Client calls an external geolocation API keyed by IP.
type Client struct {
	enabled    bool
	endpoint   string
	token      string
	header     string
	httpClient *http.Client
}

func NewClient(cfg config.GeoConfig) *Client {
	return &Client{
		enabled:  cfg.Enabled && cfg.Endpoint != "",
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		header:   cfg.Header,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Enabled reports whether lookups are configured at all.
func (c *Client) Enabled() bool {
	return c.enabled
}

type lookupResponse struct {
	IP *struct {
		CountryNames   map[string]string `json:"country_names"`
		ContinentNames map[string]string `json:"continent_names"`
		RegionNames    map[string]string `json:"region_names"`
		CityNames      map[string]string `json:"city_names"`
	} `json:"ip"`
}

// Lookup resolves a location for the IP. Any failure, including a disabled
// client, returns nil.
func (c *Client) Lookup(ctx context.Context, ip string) *model.Location {
	if !c.enabled || ip == "" {
		return nil
	}

	loc, err := c.lookup(ctx, ip)
	if err != nil {
		log.Debug().Err(err).Str("ip", ip).Msg("Geolocation lookup failed")
		return nil
	}
	return loc
}

func (c *Client) lookup(ctx context.Context, ip string) (*model.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+ip, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set(c.header, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("geolocation API returned " + resp.Status)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.IP == nil {
		return nil, errors.New("geolocation API response missing ip data")
	}

	return &model.Location{
		Country:   englishOr(body.IP.CountryNames, "unknown"),
		Continent: englishOr(body.IP.ContinentNames, "unknown"),
		Region:    englishOr(body.IP.RegionNames, "unknown"),
		City:      englishOr(body.IP.CityNames, "unknown"),
	}, nil
}

func englishOr(names map[string]string, fallback string) string {
	if name, ok := names["en"]; ok && name != "" {
		return name
	}
	return fallback
}
