package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/reqseq"
)

var (
	// ErrEmptyInput is returned for blank input before any request is made.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidDirection is returned for an unknown translation direction.
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrCompletionFailed wraps an error reported by the Completer.
	ErrCompletionFailed = errors.New("translation request failed")
	// ErrMalformedReply is returned when a reply lacks the expected labeled lines.
	ErrMalformedReply = errors.New("malformed translation reply")
	// ErrStale is returned by Apply for a reply superseded by a newer request.
	ErrStale = errors.New("stale translation reply")
)

// Completer sends a prompt to a text-completion backend and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Request is one issued translation.
type Request struct {
	Seq       uint64
	Text      string
	Direction manchu.Direction
}

// Result is the outcome of one Request.
type Result struct {
	Request Request
	Output  manchu.TranslationOutput
	Raw     string
	Err     error
}

// Service runs translations against a Completer.
type Service struct {
	completer Completer
	logger    *slog.Logger
	seq       reqseq.Sequence
}

// NewService creates a translation service.
func NewService(c Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{completer: c, logger: logger.With("component", "translate")}
}

// Begin validates the input and issues a request number. Blank text and
// unknown directions are rejected here, before anything is dispatched.
func (s *Service) Begin(text string, dir manchu.Direction) (Request, error) {
	if strings.TrimSpace(text) == "" {
		return Request{}, ErrEmptyInput
	}
	if !dir.Valid() {
		return Request{}, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	return Request{Seq: s.seq.Next(), Text: text, Direction: dir}, nil
}

// Run performs the request: prompt, completion, parse.
func (s *Service) Run(ctx context.Context, req Request) Result {
	res := Result{Request: req}

	prompt, err := Prompt(req.Text, req.Direction)
	if err != nil {
		res.Err = err
		return res
	}

	s.logger.Debug("sending translation request",
		slog.Uint64("seq", req.Seq),
		slog.String("direction", string(req.Direction)),
		slog.Int("chars", len(req.Text)))

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("translation request failed",
			slog.Uint64("seq", req.Seq),
			slog.String("error", err.Error()))
		res.Err = fmt.Errorf("%w: %w", ErrCompletionFailed, err)
		return res
	}
	res.Raw = raw

	out, err := Parse(raw, req.Direction)
	if err != nil {
		s.logger.Warn("could not parse translation reply",
			slog.Uint64("seq", req.Seq),
			slog.String("reply", raw),
			slog.String("error", err.Error()))
		res.Err = err
		return res
	}
	res.Output = out
	return res
}

// Apply reports ErrStale for a result that is not the latest request's,
// and otherwise returns the result's own error.
func (s *Service) Apply(res Result) error {
	if !s.seq.IsLatest(res.Request.Seq) {
		s.logger.Debug("discarding stale translation", slog.Uint64("seq", res.Request.Seq))
		return ErrStale
	}
	return res.Err
}

// Invalidate makes every outstanding request stale. The TUI calls it when
// the direction changes so a late reply cannot fill the cleared output.
func (s *Service) Invalidate() {
	s.seq.Next()
}

// Translate runs a complete translation synchronously.
func (s *Service) Translate(ctx context.Context, text string, dir manchu.Direction) (manchu.TranslationOutput, error) {
	req, err := s.Begin(text, dir)
	if err != nil {
		return manchu.TranslationOutput{}, err
	}
	res := s.Run(ctx, req)
	if err := s.Apply(res); err != nil {
		return manchu.TranslationOutput{}, err
	}
	return res.Output, nil
}
