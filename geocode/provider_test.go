package geocode

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type fakeDoer struct {
	fn func(req *http.Request) (*http.Response, error)
}

func (d fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return d.fn(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestNominatimProviderResolve(t *testing.T) {
	t.Parallel()

	doer := fakeDoer{fn: func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("User-Agent") == "" {
			t.Fatal("missing User-Agent header")
		}
		if got := req.URL.Query().Get("q"); got != "123 Main St, Springfield" {
			t.Fatalf("query = %q", got)
		}
		return jsonResponse(200, `[{"lat":"39.8","lon":"-89.6","address":{"country_code":"us"}}]`), nil
	}}

	provider := NewNominatimProvider(doer)
	got, err := provider.Resolve(context.Background(), "123 Main St, Springfield")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CountryCode != "US" {
		t.Errorf("country = %q, want %q", got.CountryCode, "US")
	}
	if got.Latitude != 39.8 || got.Longitude != -89.6 {
		t.Errorf("coords = %v,%v", got.Latitude, got.Longitude)
	}
	if got.Timezone != "" {
		t.Errorf("timezone = %q, want empty (service does not provide one)", got.Timezone)
	}
}

func TestNominatimProviderNoResults(t *testing.T) {
	t.Parallel()

	provider := NewNominatimProvider(fakeDoer{fn: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `[]`), nil
	}})

	_, err := provider.Resolve(context.Background(), "gibberish")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if providerErr.Transient {
		t.Error("zero results must be permanent, not transient")
	}
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("error = %v, want wrapping ErrNoResults", err)
	}
}

func TestNominatimProviderRateLimitIsTransient(t *testing.T) {
	t.Parallel()

	provider := NewNominatimProvider(fakeDoer{fn: func(*http.Request) (*http.Response, error) {
		return jsonResponse(429, `{}`), nil
	}})

	_, err := provider.Resolve(context.Background(), "somewhere")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || !providerErr.Transient {
		t.Fatalf("error = %v, want transient *ProviderError", err)
	}
}

func TestGoogleProviderResolve(t *testing.T) {
	t.Parallel()

	doer := fakeDoer{fn: func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(req.URL.Host+req.URL.Path, "maps/api/geocode"):
			if got := req.URL.Query().Get("key"); got != "test-key" {
				t.Fatalf("geocode key = %q", got)
			}
			return jsonResponse(200, `{
				"status":"OK",
				"results":[{
					"address_components":[{"short_name":"Springfield","types":["locality"]},{"short_name":"US","types":["country","political"]}],
					"geometry":{"location":{"lat":39.8,"lng":-89.6}}
				}]
			}`), nil
		case strings.Contains(req.URL.Host+req.URL.Path, "maps/api/timezone"):
			return jsonResponse(200, `{"status":"OK","timeZoneId":"America/Chicago"}`), nil
		default:
			t.Fatalf("unexpected request: %s", req.URL)
			return nil, nil
		}
	}}

	provider := NewGoogleProvider("test-key", doer)
	got, err := provider.Resolve(context.Background(), "123 Main St, Springfield")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CountryCode != "US" {
		t.Errorf("country = %q, want %q", got.CountryCode, "US")
	}
	if got.Timezone != "America/Chicago" {
		t.Errorf("timezone = %q, want %q", got.Timezone, "America/Chicago")
	}
	if got.Latitude != 39.8 || got.Longitude != -89.6 {
		t.Errorf("coords = %v,%v", got.Latitude, got.Longitude)
	}
}

func TestGoogleProviderZeroResultsPermanent(t *testing.T) {
	t.Parallel()

	provider := NewGoogleProvider("test-key", fakeDoer{fn: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":"ZERO_RESULTS","results":[]}`), nil
	}})

	_, err := provider.Resolve(context.Background(), "gibberish")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if providerErr.Transient {
		t.Error("ZERO_RESULTS must be permanent")
	}
}

func TestGoogleProviderQuotaIsTransient(t *testing.T) {
	t.Parallel()

	provider := NewGoogleProvider("test-key", fakeDoer{fn: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":"OVER_QUERY_LIMIT","results":[]}`), nil
	}})

	_, err := provider.Resolve(context.Background(), "anywhere")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || !providerErr.Transient {
		t.Fatalf("error = %v, want transient *ProviderError", err)
	}
}

func TestGoogleProviderTimezoneFailureKeepsPartialResult(t *testing.T) {
	t.Parallel()

	provider := NewGoogleProvider("test-key", fakeDoer{fn: func(req *http.Request) (*http.Response, error) {
		if strings.Contains(req.URL.Path, "timezone") {
			return jsonResponse(500, `{}`), nil
		}
		return jsonResponse(200, `{
			"status":"OK",
			"results":[{
				"address_components":[{"short_name":"DE","types":["country"]}],
				"geometry":{"location":{"lat":52.5,"lng":13.4}}
			}]
		}`), nil
	}})

	got, err := provider.Resolve(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Timezone != "" {
		t.Errorf("timezone = %q, want empty when lookup fails", got.Timezone)
	}
	if got.CountryCode != "DE" || got.Latitude != 52.5 {
		t.Errorf("partial result lost: %+v", got)
	}
}

func TestNewChainProviderSelection(t *testing.T) {
	t.Parallel()

	withKey := NewChain("some-key", 3)
	if len(withKey.Providers) != 2 {
		t.Fatalf("providers with key = %d, want 2", len(withKey.Providers))
	}
	if withKey.Providers[0].Name() != "google" {
		t.Errorf("first provider = %q, want google before the open fallback", withKey.Providers[0].Name())
	}

	withoutKey := NewChain("", 3)
	if len(withoutKey.Providers) != 1 || withoutKey.Providers[0].Name() != "nominatim" {
		t.Errorf("providers without key = %v, want nominatim only", withoutKey.Providers)
	}
}
