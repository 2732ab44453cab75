package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-drift/gpslocation/cmd/gpslocation/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Show or create the configuration file",
		Long: `Show the configuration gpslocation runs with.

The file is taken from --config, then GPSLOCATION_CONFIG, then
./gpslocation.yaml. Without a file the built-in defaults are shown.

Usage:
  gpslocation config          # Print the effective configuration
  gpslocation config init     # Write the defaults to the configuration file`,
		Usage: "gpslocation config [init]",
		Run:   runConfig,
	})
}

func runConfig(env *Env, args []string) error {
	path, _ := config.Path(env.ConfigPath)

	if len(args) > 0 {
		if args[0] != "init" {
			return fmt.Errorf("unknown config action %q (use init)", args[0])
		}
		return initConfig(env, path)
	}

	// Resolve validates the file before it is shown.
	resolved, err := config.Resolve(env.ConfigPath)
	if err != nil {
		return err
	}
	cfg, _, err := config.LoadOptional(path)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	source := "built-in defaults"
	if resolved.Path != "" {
		source = resolved.Path
	}
	fmt.Fprintf(env.Stdout, "# source: %s\n# effective request options: %s\n", source, resolved.Options)
	_, err = env.Stdout.Write(data)
	return err
}

func initConfig(env *Env, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := config.Marshal(config.Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(env.Stdout, "Wrote %s\n", path)
	return nil
}
