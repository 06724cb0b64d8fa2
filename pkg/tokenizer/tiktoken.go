package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const DefaultEncoding = "cl100k_base"

var loaderOnce sync.Once

// Tiktoken counts and truncates text with a BPE encoding. The encoding
// tables are embedded, so no network access is needed.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

func New(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate keeps the first maxTokens tokens of text. Decoding a prefix can
// re-encode to more tokens at a cut boundary, so the prefix shrinks until the
// result fits.
func (t *Tiktoken) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}

	n := maxTokens
	out := t.enc.Decode(tokens[:n])
	for n > 0 && t.Count(out) > maxTokens {
		n--
		out = t.enc.Decode(tokens[:n])
	}
	return out
}
