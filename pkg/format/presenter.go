package format

import (
	"context"
	"strings"
	"time"

	"github.com/xhad/buddy/internal/models"
)

// Pacing holds the presenter delays. The values are tunable and carry no
// meaning beyond display cadence.
type Pacing struct {
	WindowWords int
	ChunkDelay  time.Duration
	HeaderDelay time.Duration
	WordDelay   time.Duration
	TextDelay   time.Duration
}

// DefaultPacing is a human-perceptible typing cadence.
var DefaultPacing = Pacing{
	WindowWords: 5,
	ChunkDelay:  100 * time.Millisecond,
	HeaderDelay: 100 * time.Millisecond,
	WordDelay:   20 * time.Millisecond,
	TextDelay:   100 * time.Millisecond,
}

// Frame is one step of progressive output. Delta is the text appended in
// this step and Buffer the whole display so far.
type Frame struct {
	Chunk  models.Chunk `json:"chunk"`
	Delta  string       `json:"delta"`
	Buffer string       `json:"buffer"`
}

// Presenter emits chunks at a controlled pace.
type Presenter struct {
	pacing Pacing
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewPresenter(pacing Pacing) *Presenter {
	if pacing.WindowWords <= 0 {
		pacing.WindowWords = DefaultPacing.WindowWords
	}
	return &Presenter{pacing: pacing, sleep: sleepContext}
}

// WithSleep replaces the delay function, mainly for tests.
func (p *Presenter) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Presenter {
	p.sleep = sleep
	return p
}

// Present calls emit for every step of the growing buffer. Header, bullet
// and numbered chunks arrive whole; text chunks arrive in word windows.
// It stops at the first emit error or when ctx is done.
func (p *Presenter) Present(ctx context.Context, chunks []models.Chunk, emit func(Frame) error) error {
	var buf strings.Builder

	push := func(chunk models.Chunk, delta string) error {
		buf.WriteString(delta)
		return emit(Frame{Chunk: chunk, Delta: delta, Buffer: buf.String()})
	}

	for _, chunk := range chunks {
		if chunk.Kind != models.ChunkText {
			if err := push(chunk, chunk.Line+"\n"); err != nil {
				return err
			}
			if err := p.sleep(ctx, p.pacing.ChunkDelay); err != nil {
				return err
			}
			if chunk.Kind == models.ChunkHeader {
				if err := p.sleep(ctx, p.pacing.HeaderDelay); err != nil {
					return err
				}
			}
			continue
		}

		windows := wordWindows(chunk.Text, p.pacing.WindowWords)
		for i, w := range windows {
			delta := w
			if i < len(windows)-1 {
				delta += " "
			}
			if err := push(chunk, delta); err != nil {
				return err
			}
			if err := p.sleep(ctx, p.pacing.WordDelay); err != nil {
				return err
			}
		}
		if err := push(chunk, "\n"); err != nil {
			return err
		}
		if err := p.sleep(ctx, p.pacing.TextDelay); err != nil {
			return err
		}
	}
	return nil
}

// wordWindows groups the words of s by n. Blank text has no windows.
func wordWindows(s string, n int) []string {
	words := strings.Fields(s)
	var out []string
	for start := 0; start < len(words); start += n {
		end := start + n
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
