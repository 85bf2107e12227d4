package trace

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heaplru/internal/cache"
)

func TestLehmer64_KnownSequence(t *testing.T) {
	r := NewLehmer64(6)

	got := []uint64{r.Uint64(), r.Uint64(), r.Uint64()}
	want := []uint64{0x5, 0x5fc3abeb7b2e623d, 0x24c89959896014e4}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_InRangeAndDeterministic(t *testing.T) {
	a := Generate(NewLehmer64(42), 1000, 17)
	b := Generate(NewLehmer64(42), 1000, 17)

	require.Len(t, a, 1000)
	assert.Equal(t, a, b)

	for _, k := range a {
		require.Less(t, k, uint32(17))
	}
}

func distinct(keys []uint32) int {
	seen := map[uint32]struct{}{}
	for _, k := range keys {
		seen[k] = struct{}{}
	}

	return len(seen)
}

func newCache(t *testing.T, capacity int) *cache.Cache[uint32, uint32] {
	t.Helper()

	c, err := cache.New[uint32, uint32](cache.Config{Capacity: capacity})
	require.NoError(t, err)

	return c
}

func TestReplay_OnlyColdMissesWhenEverythingFits(t *testing.T) {
	keys := Generate(NewLehmer64(1), 5000, 100)

	res := Replay(newCache(t, 100), keys)
	assert.Equal(t, distinct(keys), res.Misses)
	assert.Equal(t, 5000, res.Accesses)
	assert.Equal(t, 100, res.Capacity)
}

func TestReplay_PrefillRemovesColdMisses(t *testing.T) {
	keys := Generate(NewLehmer64(1), 5000, 100)

	c := newCache(t, 128)
	Prefill(c, keys)

	res := Replay(c, keys)
	assert.Zero(t, res.Misses)
	assert.Zero(t, res.MissRate())
}

func TestReplay_EveryAccessMissesWithCyclicTrace(t *testing.T) {
	// Cycling through capacity+1 keys defeats LRU completely.
	var keys []uint32
	for range 10 {
		for k := range uint32(5) {
			keys = append(keys, k)
		}
	}

	res := Replay(newCache(t, 4), keys)
	assert.Equal(t, len(keys), res.Misses)
	assert.InDelta(t, 1.0, res.MissRate(), 1e-9)
}

func TestSweep_MissesNonIncreasingInCapacity(t *testing.T) {
	capacities := []int{1, 2, 4, 8, 16, 32, 64, 128}

	results, err := Sweep(context.Background(), Spec{Accesses: 4000, Keys: 96, Seed: 6, Workers: 3}, capacities)
	require.NoError(t, err)
	require.Len(t, results, len(capacities))

	for i, res := range results {
		assert.Equal(t, capacities[i], res.Capacity, "results keep input order")
		assert.Equal(t, 96, res.Keys)
		if i > 0 {
			assert.LessOrEqual(t, res.Misses, results[i-1].Misses, "LRU is a stack algorithm")
		}
	}
}

func TestSweep_InvalidCapacity(t *testing.T) {
	_, err := Sweep(context.Background(), Spec{Accesses: 10, Keys: 4}, []int{2, 0})
	require.ErrorIs(t, err, cache.ErrInvalidCapacity)
}

func TestSweep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, Spec{Accesses: 10, Keys: 4}, []int{2})
	require.ErrorIs(t, err, context.Canceled)
}
