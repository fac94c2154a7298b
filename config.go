package main

import (
	"github.com/BurntSushi/toml"
)

// Config carries the experiment parameters. Flag values fill it first;
// a TOML file given with --config overrides them.
type Config struct {
	Experiment string `toml:"experiment"`
	Seed       int64  `toml:"seed"`

	NumMembers         int  `toml:"num_members"`
	NumClassicChannels int  `toml:"num_classic_channels"`
	MaxChannelSize     int  `toml:"max_hyper_channel_size"`
	MinConnectivity    int  `toml:"hpc_avoidance_min_connectivity"`
	Parsimony          bool `toml:"hpc_parsimony"`

	FundingContributionMin int64 `toml:"funding_contribution_min"`
	FundingContributionMax int64 `toml:"funding_contribution_max"`

	NumPayments int `toml:"num_payments"`
}

// loadConfig decodes the TOML file at path over cfg.
func loadConfig(path string, cfg *Config) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}
