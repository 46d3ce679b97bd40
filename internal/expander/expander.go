// Package expander resolves shortened product links and extracts the
// 10-character catalog code (ASIN) from the final URL.
package expander

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"
)

const (
	// Some shorteners vary behavior by client identification, so requests
	// identify as a desktop browser.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultAttempts    = 4
	defaultTimeout     = 6500 * time.Millisecond
	defaultBaseBackoff = 600 * time.Millisecond
)

// Outcome is the per-URL result of an expansion. Exactly one of ASIN or Error
// is set on a completed outcome; the input URL is always echoed back for
// correlation.
type Outcome struct {
	URL      string `json:"url"`
	FinalURL string `json:"final_url,omitempty"`
	ASIN     string `json:"asin,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Expander resolves redirect chains with bounded retries and a linear backoff
// schedule: attempt N waits baseBackoff*N before retrying. Outcomes are
// independent; one URL failing never aborts the batch.
type Expander struct {
	client      *http.Client
	attempts    int
	timeout     time.Duration
	baseBackoff time.Duration
	sleep       func(time.Duration)
}

// Option customizes an Expander.
type Option func(*Expander)

// WithHTTPClient overrides the transport. The client should follow redirects;
// the default stdlib client does.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Expander) { e.client = hc }
}

// WithRetryPolicy sets the attempt count, per-attempt timeout and base
// backoff.
func WithRetryPolicy(attempts int, timeout, baseBackoff time.Duration) Option {
	return func(e *Expander) {
		e.attempts = attempts
		e.timeout = timeout
		e.baseBackoff = baseBackoff
	}
}

// WithSleep overrides the backoff sleeper, used by tests to observe the
// schedule without waiting it out.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Expander) { e.sleep = sleep }
}

func New(opts ...Option) *Expander {
	e := &Expander{
		client:      &http.Client{},
		attempts:    defaultAttempts,
		timeout:     defaultTimeout,
		baseBackoff: defaultBaseBackoff,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExpandBatch processes URLs sequentially and returns one outcome per input,
// in input order.
func (e *Expander) ExpandBatch(ctx context.Context, urls []string) []Outcome {
	outcomes := make([]Outcome, 0, len(urls))
	for _, u := range urls {
		outcomes = append(outcomes, e.Expand(ctx, u))
	}
	return outcomes
}

// Expand resolves one URL and extracts the catalog code. Resolution failures
// degrade to matching against the original URL; only a missing code is
// reported as an error.
func (e *Expander) Expand(ctx context.Context, rawURL string) Outcome {
	out := Outcome{URL: rawURL}

	finalURL := e.resolve(ctx, rawURL)
	out.FinalURL = finalURL

	if code, ok := ExtractASIN(finalURL); ok {
		out.ASIN = code
		return out
	}
	out.Error = "code not found"
	return out
}

// resolve follows the redirect chain for rawURL. Transient transport failures
// retry up to the attempt limit with a linear backoff; anything else, or
// retry exhaustion, falls back to the original URL. A response with any HTTP
// status counts as resolved: only fully-failed attempts retry.
func (e *Expander) resolve(ctx context.Context, rawURL string) string {
	for attempt := 1; attempt <= e.attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		finalURL, err := e.fetch(attemptCtx, rawURL)
		cancel()
		if err == nil {
			return finalURL
		}
		if !isTransient(err) || attempt == e.attempts {
			break
		}
		e.sleep(e.baseBackoff * time.Duration(attempt))
	}
	return rawURL
}

func (e *Expander) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	// Drain nothing: the final URL is all we need. Closing releases the
	// connection before the next attempt or batch entry.
	resp.Body.Close()
	return resp.Request.URL.String(), nil
}

// isTransient reports whether err is worth retrying: timeouts, connection
// reset/refused and DNS failures. Everything else is definitive.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return false
}
