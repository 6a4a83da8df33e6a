// Package plusaddress fetches per-origin email aliases from a remote
// plus-address service.
package plusaddress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/infrastructure/config"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// ErrUnavailable is returned when no alias can be had right now
var ErrUnavailable = errors.New("plus address unavailable")

const suggestPath = "/v1/plus-addresses"

type suggestRequest struct {
	Origin string `json:"origin"`
}

type suggestResponse struct {
	PlusAddress string `json:"plus_address"`
}

// Client asks the service for an alias per origin. Aliases are stable for
// an origin, so answers are cached for the client's lifetime.
type Client struct {
	http    *resty.Client
	breaker *resilience.Breaker
	log     *logging.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewClient creates a client for the configured endpoint
func NewClient(cfg config.PlusAddressConfig, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	log = log.Named("plusaddress")

	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "formfill/1.0").
		SetHeader("Accept", "application/json")

	breaker := resilience.New("plus-address", resilience.Settings{
		HalfOpenCalls: 1,
		Cooldown:      30 * time.Second,
		Trip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		log:     log,
		cache:   make(map[string]string),
	}
}

// SuggestPlusAddress returns the alias for origin. Any failure is reported
// as ErrUnavailable so callers can simply omit the suggestion.
func (c *Client) SuggestPlusAddress(ctx context.Context, origin string) (string, error) {
	c.mu.RLock()
	alias, ok := c.cache[origin]
	c.mu.RUnlock()
	if ok {
		return alias, nil
	}

	alias, err := resilience.Call(c.breaker, func() (string, error) {
		return c.fetch(ctx, origin)
	})
	if err != nil {
		c.log.Warn("plus address lookup failed", zap.String("origin", origin), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.Lock()
	c.cache[origin] = alias
	c.mu.Unlock()
	return alias, nil
}

func (c *Client) fetch(ctx context.Context, origin string) (string, error) {
	var out suggestResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(suggestRequest{Origin: origin}).
		SetResult(&out).
		Post(suggestPath)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	if err := utils.ValidateEmail(out.PlusAddress, true); err != nil {
		return "", fmt.Errorf("invalid alias: %w", err)
	}
	return out.PlusAddress, nil
}

// BreakerState reports whether the service is currently being avoided
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}
