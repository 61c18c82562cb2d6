package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs_InOrder(t *testing.T) {
	ids := NewSequentialIDs("msg")

	assert.Equal(t, "msg-1", ids.NewID())
	assert.Equal(t, "msg-2", ids.NewID())
	assert.Equal(t, 2, ids.Issued())

	ids.Reset()
	assert.Equal(t, "msg-1", ids.NewID())
}

func TestSequentialIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "id-1", NewSequentialIDs("").NewID())
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	ids := NewSequentialIDs("c")

	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, dup := seen.LoadOrStore(ids.NewID(), true)
				assert.False(t, dup)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, ids.Issued())
}
