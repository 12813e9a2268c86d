package reqseq

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	t.Parallel()

	var s Sequence
	assert.Zero(t, s.Latest())
	assert.False(t, s.IsLatest(0))

	first := s.Next()
	assert.True(t, s.IsLatest(first))

	second := s.Next()
	assert.Greater(t, second, first)
	assert.False(t, s.IsLatest(first))
	assert.True(t, s.IsLatest(second))
}

func TestSequence_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		s    Sequence
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint64]bool)
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := s.Next()
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	assert.Equal(t, uint64(50), s.Latest())
}
