package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kestrel/pkg/config"
	"kestrel/pkg/vm"
)

// runtimeOptions assembles vm.Runtime options from the config file and the
// persistent flags. Flag values win over the file.
func runtimeOptions(cmd *cobra.Command) ([]vm.Option, error) {
	var opts []vm.Option

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		f, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		if f.Limits.MemoryLimit > 0 {
			opts = append(opts, vm.WithMemoryLimit(f.Limits.MemoryLimit))
		}
		if f.Limits.MaxAtoms > 0 {
			opts = append(opts, vm.WithMaxAtoms(f.Limits.MaxAtoms))
		}
	}
	if limit, _ := cmd.Flags().GetInt64("mem-limit"); limit > 0 {
		opts = append(opts, vm.WithMemoryLimit(limit))
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		opts = append(opts, vm.WithLogger(logger))
	}
	return opts, nil
}
