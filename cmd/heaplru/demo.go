package main

import (
	"emperror.dev/errors"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"heaplru/internal/cache"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through eviction, recency and find-or-insert",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runDemo(a.log)
		},
	}
}

// errDemo reports a demo step whose outcome differs from the documented one.
const errDemo = errors.Sentinel("demo: unexpected outcome")

func runDemo(log logr.Logger) error {
	log.Info("heaplru demo starting")

	// -------------------------------------------------------------------
	// 1) LRU eviction demo (capacity=2)
	// -------------------------------------------------------------------
	c, err := cache.New[string, int](cache.Config{Capacity: 2, Logger: log.WithName("cache")})
	if err != nil {
		return err
	}

	c.Insert("a", 1)
	c.Insert("b", 2)

	// Touch "a" so "b" becomes least-recently-used.
	if v, ok := c.Find("a"); ok {
		log.Info("find a (touches a -> MRU)", "value", *v)
	}

	// Insert "c" => cache is full and evicts LRU (expected: "b").
	c.Insert("c", 3)
	if _, ok := c.Find("b"); ok {
		return errors.WithDetails(errDemo, "step", "eviction", "key", "b")
	}
	log.Info("find b: missing (evicted as LRU)", "keys", c.Keys())

	// -------------------------------------------------------------------
	// 2) Recency demo: a found key outlives capacity-1 newer inserts
	// -------------------------------------------------------------------
	c.Find("a")
	c.Insert("d", 4)
	if !c.Contains("a") {
		return errors.WithDetails(errDemo, "step", "recency", "key", "a")
	}
	log.Info("a survived one eviction after being found", "keys", c.Keys())

	// -------------------------------------------------------------------
	// 3) FindOrInsert runs the producer only on a miss
	// -------------------------------------------------------------------
	calls := 0
	produce := func() int {
		calls++
		return 1234
	}

	c.FindOrInsert("e", produce)
	v := c.FindOrInsert("e", produce)
	if calls != 1 {
		return errors.WithDetails(errDemo, "step", "find-or-insert", "calls", calls)
	}
	log.Info("find-or-insert e twice", "value", *v, "producerCalls", calls)

	st := c.Stats()
	log.Info("done", "hits", st.Hits, "misses", st.Misses, "evictions", st.Evictions)

	return nil
}
