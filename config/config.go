// Package config configures the surrounding demo/integration layer —
// the root directory, the group-public-key file path, the basename to
// sign with, and whether split-key mode is on — the same way the teacher
// configures its relayer: environment variables with positional-flag
// overrides, not a config file format the core itself needs to know
// about. The EPID core packages (member, verifier, groupkey) take
// already-decoded values and never import this package.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the settings a demo binary or integration test needs to
// stand up a member and verifier context.
type Config struct {
	RootDir string

	// GroupPubKeyPath is the file the demo writes the encoded group
	// public key file to.
	GroupPubKeyPath string

	// Basename is the optional name-base signatures are bound to; empty
	// means random-base signatures.
	Basename string

	// SplitKey enables split-key (h1') mode.
	SplitKey bool
}

// New builds a Config from environment variables, then applies
// positional command-line overrides.
func New(args ...string) *Config {
	cfg := Config{
		RootDir:         getEnv("ROOT", "."),
		GroupPubKeyPath: getEnv("GROUP_PUBKEY", "gpubkey.bin"),
		Basename:        getEnv("BASENAME", ""),
		SplitKey:        getEnvBool("SPLIT_KEY", false),
	}

	for i := 0; i < len(args); i++ {
		if len(args) <= i+1 {
			panic(fmt.Errorf("missing argument for %s", args[i]))
		}
		switch args[i] {
		case "--root":
			cfg.RootDir = args[i+1]
			i++
		case "--group-pubkey":
			cfg.GroupPubKeyPath = args[i+1]
			i++
		case "--basename":
			cfg.Basename = args[i+1]
			i++
		case "--split-key":
			cfg.SplitKey, _ = strconv.ParseBool(args[i+1])
			i++
		}
	}

	return &cfg
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}
