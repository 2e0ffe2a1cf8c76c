package testsupport

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIncrements(t *testing.T) {
	seq1 := next()
	seq2 := next()

	assert.Equal(t, seq1+1, seq2)
}

func TestUniqueName_GeneratesUnique(t *testing.T) {
	name1 := UniqueName("Alice")
	name2 := UniqueName("Alice")

	assert.NotEqual(t, name1, name2)
	assert.Contains(t, name1, "Alice_")
}

func TestUniqueUsername_IsNormalized(t *testing.T) {
	u := UniqueUsername()
	assert.Equal(t, strings.ToLower(u), u)
	assert.False(t, strings.HasPrefix(u, "@"))
}

func TestUniqueChatID_ConcurrentCallsDoNotCollide(t *testing.T) {
	const n = 100
	var (
		mu   sync.Mutex
		seen = make(map[int64]bool, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := UniqueChatID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}
