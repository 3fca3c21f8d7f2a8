// Package transport fetches answers from the QA backend. Two strategies
// share one contract: report the latest known complete answer text through
// onUpdate. The streaming strategy reports once per decoded chunk; the
// buffered fallback reports exactly once, with the whole body.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/herbqa/teachat-go/internal/config"
	"github.com/herbqa/teachat-go/internal/logger"
)

// Transport fetches the answer for a question, reporting progress through
// onUpdate. onUpdate is never invoked once a failure has been detected.
type Transport interface {
	FetchAnswer(ctx context.Context, question string, onUpdate func(text string)) error
}

// Select runs the startup capability probe and returns the strategy used for
// the rest of the session. Every net/http response body is a byte stream, so
// the probe reduces to the configured override; the buffered fallback stays
// reachable for deployments that must not rely on chunked reads.
func Select(cfg config.BackendConfig, client *http.Client) Transport {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	if cfg.Buffered {
		logger.L.Info("transport selected", "strategy", "buffered")
		return &Buffered{cfg: cfg, client: client}
	}
	logger.L.Info("transport selected", "strategy", "streaming")
	return &Streaming{cfg: cfg, client: client}
}

// newRequest builds GET <base><path>?question=<encoded> with Accept: text/plain.
func newRequest(ctx context.Context, cfg config.BackendConfig, question string) (*http.Request, error) {
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + cfg.QAPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("question", question)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "text/plain")
	return req, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
