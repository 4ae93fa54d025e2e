package main

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/slabkit/pipe"
	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/page"
)

const defaultMsgSize = 64

var (
	benchProcs   int
	benchIters   int
	benchIO      bool
	benchMsgSize int
	benchPages   int
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVarP(&benchProcs, "procs", "p", 1, "Concurrent workers")
	cmd.Flags().IntVarP(&benchIters, "iters", "n", 5000, "Total iterations, split across workers")
	cmd.Flags().BoolVar(&benchIO, "io", false, "Write and read a message through every pipe")
	cmd.Flags().IntVar(&benchMsgSize, "msize", defaultMsgSize, "Message size for --io (1..512)")
	cmd.Flags().IntVar(&benchPages, "pages", 4096, "Pages in the mmap arena")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Benchmark pipe allocation",
		Long: `The bench command opens and closes pipes from the pipe object cache,
backed by an mmap page arena. With --io every pipe also carries one message
of --msize bytes.

Example:
  slabctl bench
  slabctl bench -p 4 -n 200000
  slabctl bench --io --msize 512 -p 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
}

// benchResult is one worker's (or the total) outcome.
type benchResult struct {
	Worker   int           `json:"worker"`
	Iters    int           `json:"iters"`
	MsgSize  int           `json:"msize,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	OpsPerS  int64         `json:"ops_per_sec"`
	BytesPer int64         `json:"bytes_per_sec,omitempty"`
}

func (r *benchResult) finish(elapsed time.Duration) {
	r.Elapsed = max(elapsed, time.Microsecond)
	r.OpsPerS = int64(float64(r.Iters) / r.Elapsed.Seconds())
	if r.MsgSize > 0 {
		r.BytesPer = int64(float64(r.Iters*r.MsgSize) / r.Elapsed.Seconds())
	}
}

// splitIters divides iters across procs, the first iters%procs workers
// taking one extra.
func splitIters(iters, procs int) []int {
	per, rem := iters/procs, iters%procs
	out := make([]int, procs)
	for i := range out {
		out[i] = per
		if i < rem {
			out[i]++
		}
	}
	return out
}

func runBench() (err error) {
	procs := max(benchProcs, 1)
	iters := max(benchIters, procs)
	msize := 0
	if benchIO {
		msize = benchMsgSize
		if msize <= 0 || msize > pipe.BufSize {
			msize = defaultMsgSize
		}
	}

	arena, err := page.NewMmapArena(benchPages)
	if err != nil {
		return fmt.Errorf("page arena: %w", err)
	}
	defer closeInto(&err, "close page arena", arena.Close)

	opts := slab.DefaultOptions()
	opts.Logger = cliLogger()
	pc, err := pipe.NewCache(arena, &opts)
	if err != nil {
		return err
	}
	defer closeInto(&err, "destroy pipe cache", pc.Destroy)

	counts := splitIters(iters, procs)
	results := make([]benchResult, procs)
	errs := make([]error, procs)

	var wg sync.WaitGroup
	start := time.Now()
	for w := range procs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[w] = benchResult{Worker: w, Iters: counts[w], MsgSize: msize}
			t0 := time.Now()
			errs[w] = benchWorker(pc, counts[w], msize)
			results[w].finish(time.Since(t0))
		}()
	}
	wg.Wait()

	total := benchResult{Worker: -1, Iters: iters, MsgSize: msize}
	total.finish(time.Since(start))

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return printBench(results, total, procs)
}

func benchWorker(pc *pipe.Cache, iters, msize int) error {
	msg := make([]byte, msize)
	for i := range msg {
		msg[i] = byte(i)
	}
	got := make([]byte, msize)

	for i := range iters {
		p, err := pc.Open()
		if err != nil {
			return fmt.Errorf("pipe failed at %d: %w", i, err)
		}
		if msize > 0 {
			if n, err := p.Write(msg); err != nil || n != msize {
				return fmt.Errorf("write failed at %d: n=%d: %v", i, n, err)
			}
			if n, err := p.Read(got); err != nil || n != msize || !bytes.Equal(got, msg) {
				return fmt.Errorf("read failed at %d: n=%d: %v", i, n, err)
			}
		}
		if err := p.Close(); err != nil {
			return fmt.Errorf("close failed at %d: %w", i, err)
		}
	}
	return nil
}

func printBench(results []benchResult, total benchResult, procs int) error {
	if jsonOut {
		return printJSON(struct {
			Workers []benchResult `json:"workers"`
			Total   benchResult   `json:"total"`
		}{results, total})
	}

	p := message.NewPrinter(language.English)
	name := "pipe_alloc"
	if total.MsgSize > 0 {
		name = "pipe_io"
	}
	for _, r := range results {
		if r.MsgSize > 0 {
			printInfo("%s", p.Sprintf("[bench] %s: worker=%d iters=%d msize=%d time=%v ops/s=%d bytes/s=%d\n",
				name, r.Worker, r.Iters, r.MsgSize, r.Elapsed.Round(time.Microsecond), r.OpsPerS, r.BytesPer))
			continue
		}
		printInfo("%s", p.Sprintf("[bench] %s: worker=%d iters=%d time=%v ops/s=%d\n",
			name, r.Worker, r.Iters, r.Elapsed.Round(time.Microsecond), r.OpsPerS))
	}
	printInfo("%s", p.Sprintf("[bench] total: procs=%d iters=%d time=%v ops/s=%d\n",
		procs, total.Iters, total.Elapsed.Round(time.Microsecond), total.OpsPerS))
	return nil
}
