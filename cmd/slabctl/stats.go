package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/kmalloc"
	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/page"
)

var (
	statsCount   int
	statsShrink  bool
	statsNoDebug bool
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntVarP(&statsCount, "count", "c", 1, "Objects to allocate per size")
	cmd.Flags().BoolVar(&statsShrink, "shrink", false, "Release empty slabs before reporting")
	cmd.Flags().BoolVar(&statsNoDebug, "no-debug", !slab.DebugDefault, "Disable debug instrumentation")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [size...]",
		Short: "Show per-class cache statistics",
		Long: `The stats command initializes the size-class allocator, allocates
--count objects for every size given, and prints one line per size class:
object size, pages, slots, used and free slots, and payload utilization.

Example:
  slabctl stats
  slabctl stats 7 64 100 --count 50
  slabctl stats 2000 --count 10 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
}

func runStats(args []string) (err error) {
	sizes := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", arg, err)
		}
		sizes = append(sizes, n)
	}

	opts := kmalloc.DefaultOptions()
	opts.Eval = false
	opts.Logger = cliLogger()
	opts.Cache.Debug = !statsNoDebug

	a, err := kmalloc.New(page.NewPool(0), &opts)
	if err != nil {
		return err
	}
	defer closeInto(&err, "close allocator", a.Close)

	for _, size := range sizes {
		for range statsCount {
			if _, err := a.Alloc(size); err != nil {
				return fmt.Errorf("alloc %d: %w", size, err)
			}
		}
		printVerbose("Allocated %d x %d bytes\n", statsCount, size)
	}
	if statsShrink {
		n, err := a.Shrink()
		if err != nil {
			return err
		}
		printVerbose("Released %d empty slabs\n", n)
	}

	if quiet && !jsonOut {
		return nil
	}
	return newPrinter().PrintStats(a.Stats())
}
