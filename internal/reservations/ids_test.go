package reservations

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceIDsUnique(t *testing.T) {
	g := NewSequenceIDs(DefaultIDPrefix)
	seen := make(map[string]struct{}, 2000)
	for i := 0; i < 2000; i++ {
		id := g.NewID()
		require.True(t, strings.HasPrefix(id, DefaultIDPrefix), id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSequenceIDsConcurrent(t *testing.T) {
	g := NewSequenceIDs("T-")
	const workers, per = 8, 250

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*per)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id := g.NewID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*per)
}

func TestSequenceIDsShape(t *testing.T) {
	id := NewSequenceIDs(DefaultIDPrefix).NewID()
	parts := strings.Split(strings.TrimPrefix(id, DefaultIDPrefix), "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "1", parts[1])
	assert.Len(t, parts[2], 6)
	assert.Equal(t, strings.ToUpper(id), id)
}
