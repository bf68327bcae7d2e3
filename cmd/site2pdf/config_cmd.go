package main

import (
	"fmt"

	"github.com/alnah/go-site2pdf/internal/yamlutil"
)

// runConfigCmd prints the effective configuration as YAML, after the config
// file, SITE2PDF_* variables and log flags have been applied.
func runConfigCmd(args []string, env *Environment) error {
	flags, positional, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: config takes no arguments, got %q", ErrTooManyArgs, positional)
	}

	warnUnknownEnvVars(env.Stderr)
	cfg, err := loadSettings(flags, loadEnvConfig())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yamlutil.Encode(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(data)
	return err
}
