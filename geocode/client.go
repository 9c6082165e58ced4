package geocode

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Address is the structured input for a lookup. Empty fields are omitted
// from the query.
type Address struct {
	Street  string
	Street2 string
	Zip     string
	City    string
	Country string
}

// Point is a resolved coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// ErrNoResults is returned when the provider answers with an empty list.
var ErrNoResults = fmt.Errorf("geocode: no results")

// Client talks to a Nominatim-compatible geocoding endpoint.
type Client struct {
	http *resty.Client
}

type result struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NewClient builds a geocoding client for the given base URL.
func NewClient(baseURL string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetHeader("User-Agent", "estately/1.0")
	return &Client{http: http}
}

// Structured queries the provider with discrete address components.
func (c *Client) Structured(ctx context.Context, addr Address) (*Point, error) {
	params := map[string]string{
		"format": "jsonv2",
		"limit":  "1",
	}
	street := addr.Street
	if addr.Street2 != "" {
		street = street + " " + addr.Street2
	}
	if street != "" {
		params["street"] = street
	}
	if addr.Zip != "" {
		params["postalcode"] = addr.Zip
	}
	if addr.City != "" {
		params["city"] = addr.City
	}
	if addr.Country != "" {
		params["country"] = addr.Country
	}
	return c.search(ctx, params)
}

// Search queries the provider with a single free-text string.
func (c *Client) Search(ctx context.Context, query string) (*Point, error) {
	return c.search(ctx, map[string]string{
		"format": "jsonv2",
		"limit":  "1",
		"q":      query,
	})
}

func (c *Client) search(ctx context.Context, params map[string]string) (*Point, error) {
	var results []result
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("geocode: request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocode: provider returned %d", resp.StatusCode())
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse longitude: %w", err)
	}
	return &Point{Latitude: lat, Longitude: lon}, nil
}
