package config

import (
	flag "github.com/spf13/pflag"
)

// Flag names shared by BindFlags and applyFlags.
const (
	FlagCapacity    = "capacity"
	FlagCapacities  = "capacities"
	FlagKeys        = "keys"
	FlagAccesses    = "accesses"
	FlagSeed        = "seed"
	FlagPrefill     = "prefill"
	FlagWorkers     = "workers"
	FlagLogLevel    = "log-level"
	FlagDevelopment = "dev"
)

// BindFlags registers every setting on fs with defaults taken from Default.
// Values are read back by Load, which only applies flags the user changed.
func BindFlags(fs *flag.FlagSet) {
	d := Default()

	fs.IntP(FlagCapacity, "c", d.Capacity, "cache capacity")
	fs.IntSlice(FlagCapacities, nil, "comma-separated capacities to replay")
	fs.IntP(FlagKeys, "k", d.Keys, "number of distinct keys in the synthetic trace")
	fs.IntP(FlagAccesses, "n", d.Accesses, "number of accesses in the synthetic trace")
	fs.Uint64(FlagSeed, d.Seed, "trace generator seed")
	fs.Bool(FlagPrefill, d.Prefill, "replay the trace once before counting misses")
	fs.Int(FlagWorkers, d.Workers, "capacities replayed concurrently (<= 0 for unbounded)")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn or error")
	fs.Bool(FlagDevelopment, d.Development, "human-friendly development logging")
}

func applyFlags(cfg *Config, fs *flag.FlagSet) error {
	var err error

	set := func(name string, apply func() error) {
		if err != nil {
			return
		}

		if f := fs.Lookup(name); f != nil && f.Changed {
			err = apply()
		}
	}

	set(FlagCapacity, func() (e error) { cfg.Capacity, e = fs.GetInt(FlagCapacity); return })
	set(FlagCapacities, func() (e error) { cfg.Capacities, e = fs.GetIntSlice(FlagCapacities); return })
	set(FlagKeys, func() (e error) { cfg.Keys, e = fs.GetInt(FlagKeys); return })
	set(FlagAccesses, func() (e error) { cfg.Accesses, e = fs.GetInt(FlagAccesses); return })
	set(FlagSeed, func() (e error) { cfg.Seed, e = fs.GetUint64(FlagSeed); return })
	set(FlagPrefill, func() (e error) { cfg.Prefill, e = fs.GetBool(FlagPrefill); return })
	set(FlagWorkers, func() (e error) { cfg.Workers, e = fs.GetInt(FlagWorkers); return })
	set(FlagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(FlagLogLevel); return })
	set(FlagDevelopment, func() (e error) { cfg.Development, e = fs.GetBool(FlagDevelopment); return })

	return err
}
