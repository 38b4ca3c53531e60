package engine

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/volleyhq/volley/internal/collection"
	"github.com/volleyhq/volley/pkg/jsonpath"
)

// HTTPConfig contains HTTP client configuration for the runner.
type HTTPConfig struct {
	// Timeout bounds each request including body read.
	Timeout time.Duration

	// MaxIdleConns controls the maximum number of idle connections.
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept alive.
	IdleConnTimeout time.Duration

	// DisableKeepAlives disables HTTP keep-alives.
	DisableKeepAlives bool
}

// DefaultHTTPConfig returns sensible defaults for load generation.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:             30 * time.Second,
		MaxIdleConns:        1000,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}
}

// HTTPRunner executes collection items sequentially over pooled HTTP
// clients. It is safe for concurrent Run calls: overlapping ticks from many
// users share the same clients and connection pools.
type HTTPRunner struct {
	secure   *http.Client
	insecure *http.Client
	log      io.Writer
}

// RunnerOption configures an HTTPRunner.
type RunnerOption func(*HTTPRunner)

// WithLogWriter sets the destination for verbose per-request lines.
func WithLogWriter(w io.Writer) RunnerOption {
	return func(r *HTTPRunner) {
		r.log = w
	}
}

// NewHTTPRunner creates a runner with both a verifying and a
// certificate-skipping client, so Options.Insecure can be honored per run
// without rebuilding transports.
func NewHTTPRunner(cfg HTTPConfig, opts ...RunnerOption) *HTTPRunner {
	r := &HTTPRunner{
		secure:   newClient(cfg, false),
		insecure: newClient(cfg, true),
		log:      io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newClient(cfg HTTPConfig, insecure bool) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		DisableKeepAlives:   cfg.DisableKeepAlives,
	}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}

// Run executes every item in the collection, in order, against a fresh
// variable scope seeded from opts.Env. Any transport-level failure aborts
// the run; response status codes, whatever they are, are outcomes, not
// errors.
func (r *HTTPRunner) Run(ctx context.Context, coll *collection.Collection, opts Options) (*RunSummary, error) {
	client := r.secure
	if opts.Insecure {
		client = r.insecure
	}

	sc := newScope(opts.Env)
	summary := &RunSummary{
		CollectionName: coll.Name,
		Executions:     make([]Execution, 0, len(coll.Items)),
	}

	for i := range coll.Items {
		item := &coll.Items[i]

		exec, body, err := r.executeItem(ctx, client, item, sc, opts.Verbose)
		if err != nil {
			return nil, fmt.Errorf("request %q: %w", item.Name, err)
		}
		summary.Executions = append(summary.Executions, exec)

		for _, rule := range item.Capture {
			value, _ := jsonpath.Lookup(body, rule.Path)
			sc.set(rule.Name, value)
		}
	}

	return summary, nil
}

func (r *HTTPRunner) executeItem(ctx context.Context, client *http.Client, item *collection.Item, sc *scope, verbose bool) (Execution, string, error) {
	url := sc.expand(item.URL)

	var reqBody io.Reader
	if body := sc.expand(item.Body); body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, item.Method, url, reqBody)
	if err != nil {
		return Execution{}, "", err
	}
	for _, h := range item.Headers {
		req.Header.Set(h.Key, sc.expand(h.Value))
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return Execution{}, "", err
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	elapsed := time.Since(start).Milliseconds()
	if readErr != nil {
		return Execution{}, "", fmt.Errorf("reading response body: %w", readErr)
	}

	if verbose {
		fmt.Fprintf(r.log, "%s %s -> %d (%dms)\n", item.Method, url, resp.StatusCode, elapsed)
	}

	return Execution{
		ItemName:   item.Name,
		StatusCode: resp.StatusCode,
		DurationMs: elapsed,
	}, string(respBody), nil
}
