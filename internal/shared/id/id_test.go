package id

import (
	"crypto/rand"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	tests := []struct {
		prefix string
	}{
		{SessionPrefix},
		{MessagePrefix},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got := gen.GenerateWithPrefix(tt.prefix)

			parts := strings.Split(got, "_")
			require.Len(t, parts, 2)
			assert.Equal(t, tt.prefix, parts[0])
			assert.Len(t, parts[1], 26)
		})
	}
}

func TestMonotonicWithinMillisecond(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gen := NewGeneratorWithEntropy(rand.Reader, func() time.Time { return fixed })

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.GenerateWithPrefix(MessagePrefix)
	}

	assert.True(t, sort.StringsAreSorted(ids), "ids from the same millisecond must sort in generation order")
}

func TestTimestamp(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	gen := NewGeneratorWithEntropy(rand.Reader, func() time.Time { return fixed })

	ts, err := Timestamp(gen.GenerateWithPrefix(SessionPrefix))
	require.NoError(t, err)
	assert.True(t, fixed.Equal(ts))

	_, err = Timestamp("msg_not-a-ulid")
	assert.Error(t, err)
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewSessionID().String(), "sess_"))
	assert.True(t, strings.HasPrefix(NewMessageID().String(), "msg_"))

	_, err := uuid.Parse(NewClientID().String())
	assert.NoError(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	const workers, perWorker = 8, 200

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s := gen.Generate().String()
				mu.Lock()
				seen[s] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
