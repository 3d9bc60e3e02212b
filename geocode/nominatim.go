package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// NominatimProvider is the open, keyless fallback. It resolves coordinates
// and country code; timezone is beyond what the service offers.
type NominatimProvider struct {
	httpClient httpDoer
	userAgent  string
}

func NewNominatimProvider(client httpDoer) *NominatimProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &NominatimProvider{
		httpClient: client,
		// Nominatim's usage policy requires an identifying user agent.
		userAgent: "siteprov/1.0",
	}
}

func (p *NominatimProvider) Name() string { return "nominatim" }

type nominatimResult struct {
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
	Address struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func (p *NominatimProvider) Resolve(ctx context.Context, address string) (Result, error) {
	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nominatimSearchURL+"?"+query.Encode(), nil)
	if err != nil {
		return Result{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Result{}, &ProviderError{Provider: p.Name(), Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Result{}, &ProviderError{Provider: p.Name(), Transient: true, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Result{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(results) == 0 {
		return Result{}, &ProviderError{Provider: p.Name(), Err: ErrNoResults}
	}

	first := results[0]
	lat, latErr := strconv.ParseFloat(first.Lat, 64)
	lon, lonErr := strconv.ParseFloat(first.Lon, 64)
	if latErr != nil || lonErr != nil {
		return Result{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("malformed coordinates %q,%q", first.Lat, first.Lon)}
	}

	return Result{
		CountryCode: strings.ToUpper(first.Address.CountryCode),
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}
