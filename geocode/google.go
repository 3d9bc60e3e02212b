package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	googleGeocodeURL  = "https://maps.googleapis.com/maps/api/geocode/json"
	googleTimezoneURL = "https://maps.googleapis.com/maps/api/timezone/json"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GoogleProvider is the keyed, high-accuracy provider. It resolves
// coordinates and country via the Geocoding API and the timezone via the
// Time Zone API.
type GoogleProvider struct {
	apiKey     string
	httpClient httpDoer
}

func NewGoogleProvider(apiKey string, client httpDoer) *GoogleProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GoogleProvider{apiKey: apiKey, httpClient: client}
}

func (p *GoogleProvider) Name() string { return "google" }

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type googleTimezoneResponse struct {
	Status     string `json:"status"`
	TimeZoneID string `json:"timeZoneId"`
}

func (p *GoogleProvider) Resolve(ctx context.Context, address string) (Result, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("key", p.apiKey)

	var geocoded googleGeocodeResponse
	if err := p.getJSON(ctx, googleGeocodeURL+"?"+query.Encode(), &geocoded); err != nil {
		return Result{}, err
	}
	if err := p.checkStatus(geocoded.Status); err != nil {
		return Result{}, err
	}
	if len(geocoded.Results) == 0 {
		return Result{}, &ProviderError{Provider: p.Name(), Err: ErrNoResults}
	}

	first := geocoded.Results[0]
	result := Result{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}
	for _, component := range first.AddressComponents {
		for _, kind := range component.Types {
			if kind == "country" {
				result.CountryCode = component.ShortName
			}
		}
	}

	// Timezone is a second lookup keyed on the resolved coordinates. A
	// failure here still returns the partial result: the chain fills the
	// timezone from elsewhere or leaves it blank.
	tzQuery := url.Values{}
	tzQuery.Set("location", strconv.FormatFloat(result.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(result.Longitude, 'f', -1, 64))
	tzQuery.Set("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	tzQuery.Set("key", p.apiKey)

	var timezone googleTimezoneResponse
	if err := p.getJSON(ctx, googleTimezoneURL+"?"+tzQuery.Encode(), &timezone); err == nil && timezone.Status == "OK" {
		result.Timezone = timezone.TimeZoneID
	}

	return result, nil
}

func (p *GoogleProvider) checkStatus(status string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS":
		return &ProviderError{Provider: p.Name(), Err: ErrNoResults}
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return &ProviderError{Provider: p.Name(), Transient: true, Err: fmt.Errorf("status %s", status)}
	default:
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %s", status)}
	}
}

func (p *GoogleProvider) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &ProviderError{Provider: p.Name(), Transient: true, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
