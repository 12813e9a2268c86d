// Package reqseq numbers asynchronous requests so that only the reply to the
// most recently issued request is applied.
package reqseq

import "sync/atomic"

// Sequence issues monotonically increasing request numbers for one flow.
// The zero value is ready to use and safe for concurrent use.
type Sequence struct {
	last atomic.Uint64
}

// Next issues a new request number. Every number issued before it becomes stale.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}

// Latest returns the most recently issued number, or 0 if none was issued.
func (s *Sequence) Latest() uint64 {
	return s.last.Load()
}

// IsLatest reports whether n is the most recently issued number.
func (s *Sequence) IsLatest(n uint64) bool {
	return n != 0 && n == s.last.Load()
}
