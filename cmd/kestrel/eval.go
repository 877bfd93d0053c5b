package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kestrel/pkg/vm"
)

var evalCmd = &cobra.Command{
	Use:   "eval <file>...",
	Short: "Evaluate source files, one isolated runtime per file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEval,
}

// runEval drives each file in its own Runtime. Runtimes are single-threaded
// internally but fully independent, so the files proceed in parallel.
func runEval(cmd *cobra.Command, args []string) error {
	opts, err := runtimeOptions(cmd)
	if err != nil {
		return err
	}
	g := new(errgroup.Group)
	for _, path := range args {
		path := path
		g.Go(func() error {
			return evalFile(cmd, opts, path)
		})
	}
	return g.Wait()
}

func evalFile(cmd *cobra.Command, opts []vm.Option, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rt := vm.NewRuntime(opts...)
	defer rt.Close()
	ctx := rt.NewContext()
	if ctx == nil {
		return fmt.Errorf("%s: context setup failed under memory limit", path)
	}
	defer ctx.Close()
	ctx.SetEvaluator(literalEvaluator{})

	result, err := ctx.Eval(src, path, vm.EvalGlobal)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, result.Inspect())
	rt.FreeValue(result)
	return nil
}
