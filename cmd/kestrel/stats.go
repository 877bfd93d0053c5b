package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kestrel/pkg/vm"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Evaluate a file and report heap accounting",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().String("out", "", "write the msgpack snapshot to a file")
}

func runStats(cmd *cobra.Command, args []string) error {
	opts, err := runtimeOptions(cmd)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	rt := vm.NewRuntime(opts...)
	defer rt.Close()
	ctx := rt.NewContext()
	if ctx == nil {
		return fmt.Errorf("%s: context setup failed under memory limit", args[0])
	}
	defer ctx.Close()
	ctx.SetEvaluator(literalEvaluator{})

	result, err := ctx.Eval(src, args[0], vm.EvalGlobal)
	if err != nil {
		return err
	}
	rt.FreeValue(result)

	u := rt.ComputeMemoryUsage()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "memory used:  %d bytes in %d allocations (limit %d)\n", u.MallocSize, u.MallocCount, u.MallocLimit)
	fmt.Fprintf(out, "objects:      %d\n", u.ObjCount)
	fmt.Fprintf(out, "strings:      %d\n", u.StrCount)
	fmt.Fprintf(out, "shapes:       %d (%d properties)\n", u.ShapeCount, u.PropCount)
	fmt.Fprintf(out, "atoms:        %d\n", u.AtomCount)
	fmt.Fprintf(out, "contexts:     %d\n", u.ContextCount)

	if path, _ := cmd.Flags().GetString("out"); path != "" {
		b, err := u.Encode()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "snapshot:     %s (%d bytes)\n", path, len(b))
	}
	return nil
}
