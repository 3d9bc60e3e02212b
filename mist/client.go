package mist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"siteprov/site"
)

const (
	pageLimit   = 100
	maxAttempts = 5
	retryBase   = 1500 * time.Millisecond
	retryCap    = 30 * time.Second
)

// Client defines the management platform operations the provisioner uses.
type Client interface {
	SelfOrgs(ctx context.Context) ([]Org, error)
	ListSites(ctx context.Context, orgID string) ([]Site, error)
	CreateSite(ctx context.Context, orgID string, req CreateSiteRequest) (*Site, error)
	UpdateSiteVars(ctx context.Context, siteID string, vars map[string]string) error
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	APIToken   string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	apiToken   string
	httpClient httpDoer

	sleep func(time.Duration) // test hook
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, errors.New("API token is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 60 * time.Second}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		apiToken:   strings.TrimSpace(cfg.APIToken),
		httpClient: doer,
	}, nil
}

type Org struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Site struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address,omitempty"`
	CountryCode  string   `json:"country_code,omitempty"`
	Timezone     string   `json:"timezone,omitempty"`
	LatLng       *LatLng  `json:"latlng,omitempty"`
	SitegroupIDs []string `json:"sitegroup_ids,omitempty"`
}

type CreateSiteRequest struct {
	Name              string  `json:"name"`
	Address           string  `json:"address,omitempty"`
	CountryCode       string  `json:"country_code,omitempty"`
	Timezone          string  `json:"timezone,omitempty"`
	LatLng            *LatLng `json:"latlng,omitempty"`
	NetworkTemplateID string  `json:"networktemplate_id,omitempty"`
	GatewayTemplateID string  `json:"gatewaytemplate_id,omitempty"`
	RFTemplateID      string  `json:"rftemplate_id,omitempty"`
}

// RequestFromDescriptor maps a canonical descriptor onto the create payload.
// Sitegroups and vars are applied in follow-up calls; they live outside the
// site object on the platform side.
func RequestFromDescriptor(d site.Descriptor) CreateSiteRequest {
	req := CreateSiteRequest{
		Name:              d.Name,
		Address:           d.Address,
		CountryCode:       d.CountryCode,
		Timezone:          d.Timezone,
		NetworkTemplateID: d.NetworkTemplateID,
		GatewayTemplateID: d.GatewayTemplateID,
		RFTemplateID:      d.RFTemplateID,
	}
	if d.HasGeo() {
		req.LatLng = &LatLng{Lat: d.Latitude, Lng: d.Longitude}
	}
	return req
}

// ErrorKind classifies API failures for the caller's batch policy.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindValidation  ErrorKind = "validation"
	KindConflict    ErrorKind = "conflict"
	KindNotFound    ErrorKind = "notfound"
	KindRateLimited ErrorKind = "ratelimited"
	KindServer      ErrorKind = "server"
	KindUnknown     ErrorKind = "unknown"
)

// APIError is a structured non-2xx response, secret-safe: it carries the
// endpoint and a truncated body, never the token.
type APIError struct {
	StatusCode int
	Kind       ErrorKind
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mist api %s: status %d (%s): %s", e.Endpoint, e.StatusCode, e.Kind, e.Message)
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

func (c *HTTPClient) SelfOrgs(ctx context.Context) ([]Org, error) {
	var orgs []Org
	if err := c.doJSON(ctx, http.MethodGet, "/self/orgs", nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// ListSites pages through the org's sites until a short page signals the end.
func (c *HTTPClient) ListSites(ctx context.Context, orgID string) ([]Site, error) {
	var sites []Site
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("/organizations/%s/sites?limit=%d&page=%d", url.PathEscape(orgID), pageLimit, page)
		var batch []Site
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &batch); err != nil {
			return nil, err
		}
		sites = append(sites, batch...)
		if len(batch) < pageLimit {
			break
		}
	}
	return sites, nil
}

func (c *HTTPClient) CreateSite(ctx context.Context, orgID string, req CreateSiteRequest) (*Site, error) {
	endpoint := fmt.Sprintf("/organizations/%s/sites", url.PathEscape(orgID))
	var created Site
	if err := c.doJSON(ctx, http.MethodPost, endpoint, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSiteVars pushes the resolved site variables into the site setting.
func (c *HTTPClient) UpdateSiteVars(ctx context.Context, siteID string, vars map[string]string) error {
	endpoint := fmt.Sprintf("/sites/%s/setting", url.PathEscape(siteID))
	payload := map[string]any{"vars": vars}
	return c.doJSON(ctx, http.MethodPut, endpoint, payload, nil)
}

// SiteNameMap returns the org's {site_id: site_name} mapping.
func SiteNameMap(ctx context.Context, client Client, orgID string) (map[string]string, error) {
	sites, err := client.ListSites(ctx, orgID)
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(sites))
	for _, s := range sites {
		if s.ID != "" {
			mapping[s.ID] = s.Name
		}
	}
	return mapping, nil
}

// doJSON performs one API call with bounded retry on rate limits and
// upstream 5xx, backing off exponentially between attempts.
func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, body any, out any) error {
	var payload []byte
	if body != nil {
		marshaled, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = marshaled
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryable, err := c.doOnce(ctx, method, endpoint, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == maxAttempts {
			return lastErr
		}
		c.wait(ctx, backoffFor(attempt))
	}
	return lastErr
}

func (c *HTTPClient) doOnce(ctx context.Context, method, endpoint string, payload []byte, out any) (retryable bool, err error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return false, fmt.Errorf("create request %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("request %s %s failed: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Kind:       kindForStatus(resp.StatusCode),
			Endpoint:   method + " " + endpointWithoutQuery(endpoint),
			Message:    strings.TrimSpace(string(responseBody)),
		}
		return apiErr.Kind == KindRateLimited || apiErr.Kind == KindServer, apiErr
	}

	if out == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("decode response %s %s: %w", method, endpoint, err)
	}
	return false, nil
}

func (c *HTTPClient) wait(ctx context.Context, d time.Duration) {
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
	d := retryBase
	for i := 1; i < attempt; i++ {
		d = d * 3 / 2
	}
	if d > retryCap {
		return retryCap
	}
	return d
}

func endpointWithoutQuery(endpoint string) string {
	if idx := strings.IndexByte(endpoint, '?'); idx >= 0 {
		return endpoint[:idx]
	}
	return endpoint
}
