package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taskboard/taskboard/internal/taskerr"
)

// ErrNoMatch means the service answered but found nothing for any candidate
// form of the address.
var ErrNoMatch = errors.New("no geocoding match for address")

type Result struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Client resolves addresses against a Nominatim-style search endpoint.
// Street addresses often carry unit/suite noise the upstream index does not
// know, so lookups retry with progressively simplified address strings.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	for _, candidate := range Simplify(address) {
		result, err := c.lookup(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}
	return nil, ErrNoMatch
}

func (c *Client) lookup(ctx context.Context, query string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, taskerr.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, taskerr.ErrUpstreamUnavailable
	}

	var hits []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, taskerr.ErrUpstreamUnavailable
	}
	if len(hits) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, taskerr.ErrUpstreamUnavailable
	}
	lng, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, taskerr.ErrUpstreamUnavailable
	}

	return &Result{
		Latitude:         lat,
		Longitude:        lng,
		FormattedAddress: hits[0].DisplayName,
	}, nil
}

// Simplify yields candidate query strings from most to least specific:
// the raw address, the address without unit/suite segments, then with
// leading segments dropped until only the broadest two remain.
func Simplify(address string) []string {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil
	}

	candidates := []string{address}
	seen := map[string]bool{address: true}
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			candidates = append(candidates, c)
		}
	}

	segments := splitSegments(address)

	var clean []string
	for _, seg := range segments {
		if !unitNoise(seg) {
			clean = append(clean, seg)
		}
	}
	add(strings.Join(clean, ", "))

	for start := 1; len(clean)-start >= 2; start++ {
		add(strings.Join(clean[start:], ", "))
	}

	return candidates
}

func splitSegments(address string) []string {
	var segments []string
	for _, seg := range strings.Split(address, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func unitNoise(segment string) bool {
	fields := strings.Fields(strings.ToLower(segment))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "suite", "ste", "ste.", "unit", "apt", "apt.", "apartment", "floor", "fl", "room", "rm":
		return true
	}
	return strings.HasPrefix(fields[0], "#")
}
