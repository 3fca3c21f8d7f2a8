package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/herbqa/teachat-go/internal/config"
	"github.com/herbqa/teachat-go/internal/textstream"
)

// Buffered is the fallback for deployments that cannot consume chunked
// bodies. It awaits the complete answer and reports it in a single update;
// the body bytes are treated as UTF-8 text regardless of what the server
// declares, decoded with the same replacement policy as the streaming path.
type Buffered struct {
	cfg    config.BackendConfig
	client *http.Client
}

func (t *Buffered) FetchAnswer(ctx context.Context, question string, onUpdate func(string)) error {
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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	onUpdate(textstream.DecodeAll(body))
	return nil
}
