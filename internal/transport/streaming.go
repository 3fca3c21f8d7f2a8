package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/herbqa/teachat-go/internal/config"
	"github.com/herbqa/teachat-go/internal/textstream"
)

// Streaming consumes the response body chunk by chunk through the stateful
// text decoder, reporting a growing snapshot after each decoded chunk.
type Streaming struct {
	cfg    config.BackendConfig
	client *http.Client
}

func (t *Streaming) FetchAnswer(ctx context.Context, question string, onUpdate func(string)) error {
	req, err := newRequest(ctx, t.cfg, question)
	if err != nil {
		return err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if resp.Body == http.NoBody {
		return errors.New("response has no readable body")
	}

	_, err = textstream.Drain(resp.Body, onUpdate)
	return err
}
