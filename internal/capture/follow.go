package capture

import (
	"bufio"
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxLineBytes bounds a single line read by Follow.
const DefaultMaxLineBytes = 16384

// Summary counts what Follow did.
type Summary struct {
	Lines      int
	Saved      int
	Duplicates int
	TooShort   int
	Invalid    int
	Oversized  int
	Secrets    int
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeSaved:
		s.Saved++
	case OutcomeDuplicate:
		s.Duplicates++
	case OutcomeTooShort:
		s.TooShort++
	case OutcomeInvalid:
		s.Invalid++
	case OutcomeSecret:
		s.Secrets++
	}
}

// FollowOptions configures Follow.
type FollowOptions struct {
	// MaxLineBytes drops longer lines. Zero uses DefaultMaxLineBytes.
	MaxLineBytes int

	// Background tasks run alongside the reader and are stopped when
	// input ends. Each must return when its context is cancelled.
	Background []func(ctx context.Context) error

	// OnResult, if set, sees every processed line.
	OnResult func(Result)
}

type line struct {
	text      string
	oversized bool
}

// Follow captures every line of r until EOF or ctx is cancelled.
func (p *Pipeline) Follow(ctx context.Context, r io.Reader, opts FollowOptions) (*Summary, error) {
	maxBytes := opts.MaxLineBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLineBytes
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan line)
	readErr := make(chan error, 1)
	// The reader can block on a terminal, so it stays outside the group.
	go func() {
		defer close(lines)
		readErr <- readLines(ctx, r, maxBytes, lines)
	}()

	summary := &Summary{}
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range opts.Background {
		g.Go(func() error { return task(gctx) })
	}
	g.Go(func() error {
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				return nil
			case l, ok := <-lines:
				if !ok {
					return nil
				}
				summary.Lines++
				if l.oversized {
					summary.Oversized++
					p.logger.Warn("capture line dropped", "reason", "too long", "max_bytes", maxBytes)
					continue
				}
				res, err := p.Capture(gctx, l.text)
				if err != nil {
					return err
				}
				summary.add(res.Outcome)
				if opts.OnResult != nil {
					opts.OnResult(res)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return summary, err
	}
	select {
	case err := <-readErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return summary, err
		}
	default:
	}
	return summary, nil
}

// readLines sends each line of r, truncated lines flagged as oversized.
func readLines(ctx context.Context, r io.Reader, maxBytes int, out chan<- line) error {
	br := bufio.NewReaderSize(r, 4096)
	var buf []byte
	oversized := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if len(chunk) > 0 && !oversized {
			if len(buf)+len(chunk) > maxBytes {
				oversized = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == nil && isPrefix {
			continue
		}
		if err == nil || (err == io.EOF && (len(buf) > 0 || oversized)) {
			select {
			case out <- line{text: string(buf), oversized: oversized}:
			case <-ctx.Done():
				return ctx.Err()
			}
			buf = buf[:0]
			oversized = false
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
