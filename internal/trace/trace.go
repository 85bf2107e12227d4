// Package trace replays synthetic access traces against the LRU cache and
// counts misses.
package trace

import (
	"context"
	"math/bits"

	"emperror.dev/errors"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"heaplru/internal/cache"
)

// lehmerMultiplier is the multiplier of the 128-bit Lehmer generator.
const lehmerMultiplier = 0xda942042e4dd58b5

// Lehmer64 is a 128-bit-state multiplicative congruential generator.
// Equal seeds yield equal sequences on every platform.
type Lehmer64 struct {
	hi, lo uint64
}

// NewLehmer64 returns a generator whose 128-bit state is seed.
func NewLehmer64(seed uint64) *Lehmer64 {
	return &Lehmer64{lo: seed}
}

// Uint64 advances the state and returns its high 64 bits.
func (r *Lehmer64) Uint64() uint64 {
	carry, lo := bits.Mul64(r.lo, lehmerMultiplier)
	r.hi = r.hi*lehmerMultiplier + carry
	r.lo = lo

	return r.hi
}

// Generate returns n keys drawn uniformly (modulo bias aside) from [0, keys).
// keys must be positive.
func Generate(r *Lehmer64, n, keys int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(r.Uint64() % uint64(keys))
	}

	return out
}

// Result summarizes one replay.
type Result struct {
	Accesses int
	Keys     int
	Capacity int
	Misses   int
}

// MissRate returns Misses / Accesses.
func (r Result) MissRate() float64 {
	if r.Accesses == 0 {
		return 0
	}

	return float64(r.Misses) / float64(r.Accesses)
}

// Prefill runs every key of keys through FindOrInsert, warming the cache.
func Prefill(c *cache.Cache[uint32, uint32], keys []uint32) {
	for _, k := range keys {
		c.FindOrInsert(k, func() uint32 { return 0 })
	}
}

// Replay looks up every key and inserts it on a miss.
func Replay(c *cache.Cache[uint32, uint32], keys []uint32) Result {
	res := Result{Accesses: len(keys), Capacity: c.Cap()}

	for _, k := range keys {
		if _, ok := c.Find(k); ok {
			continue
		}

		res.Misses++
		c.Insert(k, 0)
	}

	return res
}

// Spec describes a synthetic workload.
type Spec struct {
	Accesses int
	Keys     int
	Seed     uint64
	Prefill  bool

	// Workers bounds concurrent replays; <= 0 means one goroutine per capacity.
	Workers int

	Logger logr.Logger
}

// Sweep replays the workload once per capacity, each against its own cache
// and confined to one goroutine. Results are in the order of capacities.
func Sweep(ctx context.Context, spec Spec, capacities []int) ([]Result, error) {
	keys := Generate(NewLehmer64(spec.Seed), spec.Accesses, spec.Keys)

	log := spec.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	results := make([]Result, len(capacities))

	g, ctx := errgroup.WithContext(ctx)
	if spec.Workers > 0 {
		g.SetLimit(spec.Workers)
	}

	for i, capacity := range capacities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			c, err := cache.New[uint32, uint32](cache.Config{
				Capacity: capacity,
				Logger:   log.WithValues("capacity", capacity),
			})
			if err != nil {
				return errors.WithDetails(err, "capacity", capacity)
			}

			if spec.Prefill {
				Prefill(c, keys)
			}

			res := Replay(c, keys)
			res.Keys = spec.Keys
			results[i] = res

			log.V(1).Info("replay finished", "capacity", capacity, "misses", res.Misses, "fill", c.Len())

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
