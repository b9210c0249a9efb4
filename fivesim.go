// Package fivesim is a typed client for the 5sim.net phone-number rental
// API. The service rents out real phone numbers for one-time SMS
// verification (activation products) and longer-term use (hosting
// products), and exposes three API surfaces: user operations on the
// authenticated account, guest catalog browsing, and vendor payout
// management.
//
// Construct a client with New and use the facade for the surface you
// need:
//
//	client, err := fivesim.New(fivesim.Config{APIKey: key})
//	if err != nil {
//		return err
//	}
//
//	order, err := client.User.BuyNumber(ctx,
//		fivesim.CountryRussia, fivesim.OperatorAny, fivesim.ProductTelegram, nil)
//
// All API failures are reported as *APIError values carrying a closed
// ErrorKind; inspect them with KindOf or IsKind. Caller-side validation
// failures unwrap to ErrInvalidArgument and never reach the network.
package fivesim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/fivesim-client/internal/adapters/clients"
	"github.com/jsamuelsen/fivesim-client/internal/platform/config"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://5sim.net"

// RetryConfig controls transport-level retries on server errors and
// transient network failures. The zero value means a single attempt.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

// CircuitConfig controls the transport circuit breaker. The zero value
// uses the defaults from the platform configuration.
type CircuitConfig struct {
	MaxFailures   int
	Timeout       time.Duration
	HalfOpenLimit int
}

// Config configures a FiveSim client.
type Config struct {
	// APIKey is the bearer token from the 5sim profile page.
	APIKey string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout is the per-attempt request timeout.
	Timeout time.Duration

	// Retry configures transport retries. Defaults to a single attempt.
	Retry RetryConfig

	// Circuit configures the transport circuit breaker.
	Circuit CircuitConfig

	// Logger receives debug-level request logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// FiveSim is the client entry point. The three facades share one
// instrumented transport, so retries and the circuit breaker apply across
// all of them.
type FiveSim struct {
	User   *UserAPI
	Guest  *GuestAPI
	Vendor *VendorAPI
}

// New creates a FiveSim client from the given configuration.
func New(cfg Config) (*FiveSim, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	circuit := cfg.Circuit
	if circuit.MaxFailures <= 0 {
		circuit.MaxFailures = config.DefaultClientCircuitMaxFailures
	}
	if circuit.Timeout <= 0 {
		circuit.Timeout = 30 * time.Second
	}
	if circuit.HalfOpenLimit <= 0 {
		circuit.HalfOpenLimit = config.DefaultClientCircuitHalfOpenLimit
	}

	transport, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: "5sim",
		Timeout:     cfg.Timeout,
		AuthFunc:    bearerAuth(cfg.APIKey),
		Retry: config.RetryConfig{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
			Multiplier:      cfg.Retry.Multiplier,
			JitterFactor:    cfg.Retry.JitterFactor,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   circuit.MaxFailures,
			Timeout:       circuit.Timeout,
			HalfOpenLimit: circuit.HalfOpenLimit,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}

	return &FiveSim{
		User:   &UserAPI{api: newAPI(transport, "/v1/user", logger)},
		Guest:  &GuestAPI{api: newAPI(transport, "/v1/guest", logger)},
		Vendor: &VendorAPI{api: newAPI(transport, "/v1/vendor", logger)},
	}, nil
}

// authKey flags a request context as needing the bearer token. The
// transport's auth hook reads the flag, so retried attempts are signed
// the same way as the first.
type authKey struct{}

func withAuth(ctx context.Context, auth bool) context.Context {
	return context.WithValue(ctx, authKey{}, auth)
}

func isAuthenticated(ctx context.Context) bool {
	auth, _ := ctx.Value(authKey{}).(bool)
	return auth
}

// bearerAuth builds the transport auth hook. Guest catalog calls carry
// no token; everything flagged by the facades gets the account bearer.
func bearerAuth(apiKey string) func(*http.Request) {
	return func(req *http.Request) {
		if isAuthenticated(req.Context()) {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}
	}
}

// api binds one of the three base paths to the shared transport.
type api struct {
	transport *clients.Client
	basePath  string
	logger    *slog.Logger
}

func newAPI(transport *clients.Client, basePath string, logger *slog.Logger) *api {
	return &api{
		transport: transport,
		basePath:  basePath,
		logger:    logger,
	}
}

// get issues an authenticated or anonymous GET and returns the classified
// response body.
func (a *api) get(ctx context.Context, auth bool, query url.Values, segments ...string) ([]byte, error) {
	return a.call(ctx, http.MethodGet, auth, query, nil, segments...)
}

// post issues a POST with a JSON body and returns the classified response
// body.
func (a *api) post(ctx context.Context, auth bool, body io.Reader, segments ...string) ([]byte, error) {
	return a.call(ctx, http.MethodPost, auth, nil, body, segments...)
}

func (a *api) call(ctx context.Context, method string, auth bool, query url.Values, body io.Reader, segments ...string) ([]byte, error) {
	ctx = withAuth(ctx, auth)
	path := a.path(segments...)

	var resp *http.Response
	var err error
	if method == http.MethodPost {
		resp, err = a.transport.Post(ctx, path, body)
	} else {
		resp, err = a.transport.Get(ctx, path, query)
	}
	if err != nil {
		return nil, transportError(err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			a.logger.Debug("failed to close response body", slog.Any("error", closeErr))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if apiErr := classify(resp.StatusCode, reasonPhrase(resp), string(data)); apiErr != nil {
		return nil, apiErr
	}

	return data, nil
}

// path joins the base path and the escaped path segments.
func (a *api) path(segments ...string) string {
	var b strings.Builder
	b.WriteString(a.basePath)
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}

// reasonPhrase extracts the reason phrase from a response status line.
func reasonPhrase(resp *http.Response) string {
	return strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
}

// HistoryOptions are the optional paging parameters shared by the orders
// and payments history endpoints. Zero values omit the parameter so the
// server default applies. Reverse is a pointer because both "true" and
// "false" are meaningful wire values.
type HistoryOptions struct {
	Limit   int
	Offset  int
	Order   string
	Reverse *bool
}

// historyQuery builds the wire query for a history call. The orders
// endpoint additionally requires a category.
func historyQuery(category Category, opts *HistoryOptions) url.Values {
	query := url.Values{}
	if category != "" {
		query.Set("category", string(category))
	}
	if opts == nil {
		return query
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Order != "" {
		query.Set("order", opts.Order)
	}
	if opts.Reverse != nil {
		query.Set("reverse", strconv.FormatBool(*opts.Reverse))
	}
	return query
}
