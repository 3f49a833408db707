package viewstate

import "flag"

type Config struct {
	// BatchHoverClear makes ClearHoverNode publish a single state change
	// instead of one per view. The resulting state is the same.
	BatchHoverClear bool `yaml:"batch_hover_clear"`
}

func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("viewstate.", f)
}

func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.BoolVar(&cfg.BatchHoverClear, prefix+"batch-hover-clear", false, "Publish a single state change when clearing the hover of every flamechart.")
}
