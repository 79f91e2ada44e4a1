package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"stakevest/crypto"
	"stakevest/observability/metrics"
)

// HTTPConfig defines the client settings for a remote allocation service.
type HTTPConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// HTTPOracle queries allocations from a remote service:
//
//	GET {base}/allocations/{address}?kind=primary|referral -> {"amount":"123"}
type HTTPOracle struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.EngineMetrics
}

type allocationResponse struct {
	Amount string `json:"amount"`
}

// NewHTTP constructs a client with sane defaults.
func NewHTTP(cfg HTTPConfig) (*HTTPOracle, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("oracle: base url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &HTTPOracle{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    metrics.Engine(),
	}, nil
}

// PrimaryAllocation implements vesting.AllocationOracle.
func (o *HTTPOracle) PrimaryAllocation(user crypto.Address) (*big.Int, error) {
	return o.fetch("primary", user)
}

// ReferralAllocation implements vesting.AllocationOracle.
func (o *HTTPOracle) ReferralAllocation(user crypto.Address) (*big.Int, error) {
	return o.fetch("referral", user)
}

func (o *HTTPOracle) fetch(kind string, user crypto.Address) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	amount, err := o.Fetch(ctx, kind, user)
	o.metrics.ObserveOracle("http_"+kind, err)
	return amount, err
}

// Fetch retrieves one allocation, waiting for the rate limiter first.
func (o *HTTPOracle) Fetch(ctx context.Context, kind string, user crypto.Address) (*big.Int, error) {
	if o == nil {
		return nil, fmt.Errorf("oracle: client not configured")
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("oracle: rate limit: %w", err)
	}
	endpoint := fmt.Sprintf("%s/allocations/%s?kind=%s", o.baseURL, url.PathEscape(user.String()), url.QueryEscape(kind))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("oracle: request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle: call: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return big.NewInt(0), nil
	default:
		return nil, fmt.Errorf("oracle: unexpected status %d", resp.StatusCode)
	}
	var payload allocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("oracle: decode: %w", err)
	}
	amount, ok := new(big.Int).SetString(strings.TrimSpace(payload.Amount), 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("oracle: invalid amount %q", payload.Amount)
	}
	return amount, nil
}
