package config

import (
	"flag"
	"io"

	"github.com/hablemosverde/verde/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL
//	-d string   data directory
//	-p string   profile name
//	-s string   signal transport: memory, file or redis
//
// Note: args are filtered to the flags handled here using flagx.FilterArgs,
// so flags meant for other components do not fail parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-p", "-s"})

	fs := flag.NewFlagSet("verde", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.Profile, "p", cfg.Profile, "profile name")
	fs.StringVar(&cfg.SignalTransport, "s", cfg.SignalTransport, "signal transport (memory|file|redis)")

	return fs.Parse(args)
}
