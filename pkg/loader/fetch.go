package loader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/model"
)

// FetchOptions controls retries for remote documents.
type FetchOptions struct {
	RetryMax int
	WaitMin  time.Duration
	WaitMax  time.Duration
	Timeout  time.Duration

	// HTTPClient replaces the underlying transport client (tests).
	HTTPClient *http.Client
}

// DefaultFetchOptions mirrors the config defaults.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		RetryMax: 4,
		WaitMin:  500 * time.Millisecond,
		WaitMax:  8 * time.Second,
		Timeout:  15 * time.Second,
	}
}

// debugLogger routes retryablehttp's request log into the debug log.
type debugLogger struct{}

func (debugLogger) Printf(format string, args ...interface{}) {
	debug.Log("fetch: "+format, args...)
}

func newRetryClient(opts FetchOptions) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = debugLogger{}
	client.RetryMax = opts.RetryMax
	if opts.WaitMin > 0 {
		client.RetryWaitMin = opts.WaitMin
	}
	if opts.WaitMax > 0 {
		client.RetryWaitMax = opts.WaitMax
	}
	if opts.HTTPClient != nil {
		c := *opts.HTTPClient
		client.HTTPClient = &c
	}
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}
	return client
}

// Fetch downloads the document over HTTP, retrying transient failures with
// exponential backoff. After the last retry the error is returned so the
// caller can surface it.
func Fetch(ctx context.Context, url string, fetch FetchOptions, opts ParseOptions) (*model.GraphDocument, *Report, error) {
	client := newRetryClient(fetch)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	return ParseDocument(resp.Body, opts)
}
