// Package textstream turns a chunked byte stream into progressively growing
// text snapshots. Decoding is stateful: an incomplete multi-byte UTF-8
// sequence at the end of one chunk is held back and completed by the next,
// instead of being mangled into replacement characters at the join.
package textstream

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder accumulates decoded text across chunk boundaries. Malformed input
// never fails a decode: invalid bytes come out as U+FFFD.
type Decoder struct {
	utf8    transform.Transformer
	pending []byte
	text    strings.Builder
	scratch [4096]byte
}

// NewDecoder returns a decoder with empty accumulated text.
func NewDecoder() *Decoder {
	return &Decoder{utf8: unicode.UTF8.NewDecoder()}
}

// Write decodes one chunk and returns the newly completed text, which is
// empty when the chunk only extends a partial multi-byte sequence.
func (d *Decoder) Write(p []byte) string {
	return d.decode(p, false)
}

// Flush drains any bytes still held back (a truncated trailing sequence
// becomes U+FFFD) and returns the full accumulated text.
func (d *Decoder) Flush() string {
	d.decode(nil, true)
	return d.text.String()
}

// Text returns the text accumulated so far.
func (d *Decoder) Text() string {
	return d.text.String()
}

func (d *Decoder) decode(p []byte, atEOF bool) string {
	src := p
	if len(d.pending) > 0 {
		src = append(d.pending, p...)
		d.pending = nil
	}

	start := d.text.Len()
	for {
		nDst, nSrc, err := d.utf8.Transform(d.scratch[:], src, atEOF)
		d.text.Write(d.scratch[:nDst])
		src = src[nSrc:]
		if err == transform.ErrShortDst {
			continue
		}
		if err == transform.ErrShortSrc && !atEOF {
			// Partial multi-byte tail: keep it for the next chunk.
			d.pending = append(d.pending, src...)
		}
		break
	}
	return d.text.String()[start:]
}

// Drain pulls r until EOF, invoking onUpdate with the full accumulated
// snapshot (not the delta) after every chunk that completed new text, then
// exactly once more after the final flush, even when the flush adds nothing.
// Invocations happen strictly in chunk order. A read failure returns the
// text decoded so far along with the error, without a completion callback.
func Drain(r io.Reader, onUpdate func(text string)) (string, error) {
	d := NewDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if added := d.Write(buf[:n]); added != "" {
				onUpdate(d.Text())
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return d.Flush(), err
		}
	}

	final := d.Flush()
	onUpdate(final)
	return final, nil
}

// DecodeAll decodes a fully buffered body with the same replacement policy
// as the streaming path.
func DecodeAll(p []byte) string {
	d := NewDecoder()
	d.Write(p)
	return d.Flush()
}
