package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	t.Run("uses prefix", func(t *testing.T) {
		id := UUIDGenerator{}.NewID(PrefixTask)
		assert.True(t, strings.HasPrefix(id, "task-"))
		assert.Len(t, id, len("task-")+36)
	})

	t.Run("empty prefix", func(t *testing.T) {
		id := UUIDGenerator{}.NewID("")
		assert.Len(t, id, 36)
	})

	t.Run("no repeats under concurrency", func(t *testing.T) {
		const n = 1000
		var (
			mu   sync.Mutex
			seen = make(map[string]struct{}, n)
			wg   sync.WaitGroup
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := New(PrefixFile)
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seen, n)
	})
}

func TestDerive(t *testing.T) {
	a := Derive("/index.html", "1")
	b := Derive("/index.html", "1")
	c := Derive("/index.html", "2")

	require.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, Derive("ab", "c"), Derive("a", "bc"))
}

func TestSequence(t *testing.T) {
	var s Sequence
	assert.Equal(t, "task-1", s.NewID("task"))
	assert.Equal(t, "file-2", s.NewID("file"))
	assert.Equal(t, "3", s.NewID(""))
}
