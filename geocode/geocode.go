package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Result holds the resolved geographic fields for an address. Zero values
// mean "unresolved"; the chain fills fields independently per provider.
type Result struct {
	CountryCode string
	Timezone    string
	Latitude    float64
	Longitude   float64
}

func (r Result) hasCountry() bool  { return strings.TrimSpace(r.CountryCode) != "" }
func (r Result) hasTimezone() bool { return strings.TrimSpace(r.Timezone) != "" }
func (r Result) hasCoords() bool   { return r.Latitude != 0 || r.Longitude != 0 }

func (r Result) complete() bool {
	return r.hasCountry() && r.hasTimezone() && r.hasCoords()
}

// merge copies fields from other into r where r has no value yet.
// Existing values are never overwritten, which is what makes caller-supplied
// overrides win over provider output.
func (r Result) merge(other Result) Result {
	if !r.hasCountry() && other.hasCountry() {
		r.CountryCode = strings.ToUpper(strings.TrimSpace(other.CountryCode))
	}
	if !r.hasTimezone() && other.hasTimezone() {
		r.Timezone = strings.TrimSpace(other.Timezone)
	}
	if !r.hasCoords() && other.hasCoords() {
		r.Latitude = other.Latitude
		r.Longitude = other.Longitude
	}
	return r
}

// Provider resolves an address with a single backend.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, address string) (Result, error)
}

// Resolver is the narrow interface the extraction pipeline depends on.
type Resolver interface {
	Resolve(ctx context.Context, address string, overrides Result) (Result, error)
}

// ErrNoResults marks a permanent failure: the provider answered but knows
// nothing about the address. No retry, fall through to the next provider.
var ErrNoResults = errors.New("address yielded no geocoding results")

// ProviderError wraps a provider failure and records whether it is worth
// retrying (timeouts, rate limits, upstream 5xx).
type ProviderError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("geocode provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// FailedError is returned when the whole chain was exhausted without
// resolving either coordinates or a country code.
type FailedError struct {
	Address string
	Tried   []string
}

func (e *FailedError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("geocoding failed for %q: no provider available", e.Address)
	}
	return fmt.Sprintf("geocoding failed for %q after trying %s", e.Address, strings.Join(e.Tried, ", "))
}

const (
	defaultMaxAttempts = 3
	backoffBase        = 1500 * time.Millisecond
	backoffCap         = 30 * time.Second
)

// Chain resolves addresses through an ordered list of providers, merging
// per-field: a later provider only contributes fields still unset. Transient
// provider errors are retried with exponential backoff before the chain
// moves on.
type Chain struct {
	Providers   []Provider
	MaxAttempts int

	sleep func(time.Duration) // test hook
}

// NewChain builds the provider list from the available credentials: the keyed
// Google provider first when a key is configured, the open Nominatim provider
// always last.
func NewChain(googleAPIKey string, maxAttempts int) *Chain {
	var providers []Provider
	if strings.TrimSpace(googleAPIKey) != "" {
		providers = append(providers, NewGoogleProvider(googleAPIKey, nil))
	}
	providers = append(providers, NewNominatimProvider(nil))
	return &Chain{Providers: providers, MaxAttempts: maxAttempts}
}

func (c *Chain) Resolve(ctx context.Context, address string, overrides Result) (Result, error) {
	resolved := Result{}.merge(overrides)
	tried := make([]string, 0, len(c.Providers))

	for _, provider := range c.Providers {
		if resolved.complete() {
			break
		}
		tried = append(tried, provider.Name())

		partial, err := c.resolveWithRetry(ctx, provider, address)
		if err != nil {
			continue
		}
		resolved = resolved.merge(partial)
	}

	if !resolved.hasCoords() && !resolved.hasCountry() {
		return resolved, &FailedError{Address: address, Tried: tried}
	}
	return resolved, nil
}

func (c *Chain) resolveWithRetry(ctx context.Context, provider Provider, address string) (Result, error) {
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := provider.Resolve(ctx, address)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var providerErr *ProviderError
		if !errors.As(err, &providerErr) || !providerErr.Transient {
			break
		}
		if attempt == maxAttempts {
			break
		}
		c.wait(ctx, backoffFor(attempt))
	}
	return Result{}, lastErr
}

func (c *Chain) wait(ctx context.Context, d time.Duration) {
	if c.sleep != nil {
		c.sleep(d)
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func backoffFor(attempt int) time.Duration {
	d := backoffBase
	for i := 1; i < attempt; i++ {
		d = d * 3 / 2
	}
	if d > backoffCap {
		return backoffCap
	}
	return d
}
