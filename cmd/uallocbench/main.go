// Command uallocbench loads one or more allocator trace files, replays each
// against its own allocator instance, and reports utilization and timing
// statistics.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/uallocbench/internal/allocator"
	"github.com/orizon-lang/uallocbench/internal/cli"
	"github.com/orizon-lang/uallocbench/internal/provider"
	"github.com/orizon-lang/uallocbench/internal/trace"
	"github.com/orizon-lang/uallocbench/internal/tracewatch"
)

const toolName = "uallocbench"

// maxHeapBytes bounds how far any single trace's heap may grow.
const maxHeapBytes = 256 << 20

func main() {
	verbose := flag.Bool("v", false, "verbose logging")
	watch := flag.Bool("watch", false, "re-run a trace whenever its file changes (single trace only)")
	jobs := flag.Int("j", 1, "number of trace files to run concurrently")
	flag.Usage = func() { printUsage() }
	flag.Parse()

	args := flag.Args()
	if err := cli.ValidateArgs(args, 1, toolName+" [-v] [-watch] [-j N] trace..."); err != nil {
		cli.ExitWithError("%v", err)
	}

	logger := cli.NewLogger(*verbose, false)

	if *watch {
		if len(args) != 1 {
			cli.ExitWithError("-watch requires exactly one trace file")
		}

		runWatch(args[0], logger)

		return
	}

	if err := runAll(args, *jobs, logger); err != nil {
		cli.ExitWithError("%v", err)
	}
}

func runAll(paths []string, jobs int, logger *cli.Logger) error {
	if jobs < 1 {
		jobs = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(jobs)

	for _, path := range paths {
		path := path

		g.Go(func() error {
			stats, err := runOne(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			logger.Info("%s: %s", path, formatStats(stats))
			printStats(path, stats)

			return nil
		})
	}

	return g.Wait()
}

func runOne(path string) (trace.Stats, error) {
	script, err := trace.Load(path)
	if err != nil {
		return trace.Stats{}, err
	}

	p, err := provider.NewDefault(maxHeapBytes)
	if err != nil {
		return trace.Stats{}, err
	}

	h := allocator.NewHeap()
	if err := h.Init(p); err != nil {
		return trace.Stats{}, err
	}

	return trace.Run(h, script)
}

func runWatch(path string, logger *cli.Logger) {
	if _, err := os.Stat(path); err != nil {
		cli.ExitWithError("%v", err)
	}

	w, err := tracewatch.NewWatcher(path)
	if err != nil {
		cli.ExitWithError("watching %s: %v", path, err)
	}
	defer w.Close()

	run := func() {
		stats, err := runOne(path)
		if err != nil {
			logger.Error("%s: %v", path, err)

			return
		}

		printStats(path, stats)
	}

	run()

	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return
			}

			if ev.Op&(tracewatch.OpWrite|tracewatch.OpCreate) != 0 {
				run()
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}

			logger.Error("watch: %v", err)
		}
	}
}

func printStats(path string, s trace.Stats) {
	fmt.Printf("%s: alloc=%d free=%d resize=%d peak=%d heap=%d util=%.3f elapsed=%s\n",
		path, s.AllocOps, s.FreeOps, s.ResizeOps, s.PeakBytesInUse, s.HeapBytes, s.Utilization, s.Elapsed)
}

func formatStats(s trace.Stats) string {
	return fmt.Sprintf("%d ops, peak %d bytes, %.1f%% utilization", s.AllocOps+s.FreeOps+s.ResizeOps,
		s.PeakBytesInUse, s.Utilization*100)
}

func printUsage() {
	cli.PrintUsage(toolName, []cli.CommandInfo{
		{
			Name:        "run",
			Description: "replay one or more trace files and report statistics",
			Usage:       toolName + " [-v] [-watch] [-j N] trace...",
			Flags: []cli.FlagInfo{
				{Name: "v", Usage: "verbose logging"},
				{Name: "watch", Usage: "re-run a trace whenever its file changes (single trace only)"},
				{Name: "j", Usage: "number of trace files to run concurrently", Default: "1"},
			},
		},
	})
}
