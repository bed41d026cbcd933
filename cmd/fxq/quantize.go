package main

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pfcm/fxq"
)

var quantizeJobs int

var quantizeCmd = &cobra.Command{
	Use:   "quantize [value...]",
	Short: "Quantize values under the active unit",
	Long: `Quantize values under the active unit and report, for each, the
representation it lands on and the error the quantization introduced.
Values come from the arguments, or from stdin one per line when no
arguments are given.`,
	RunE: runQuantize,
}

func init() {
	quantizeCmd.Flags().IntVarP(&quantizeJobs, "jobs", "j", runtime.NumCPU(), "worker goroutines")
	rootCmd.AddCommand(quantizeCmd)
}

type quantized struct {
	in   float64
	rep  string
	real float64
	err  error
}

func runQuantize(cmd *cobra.Command, args []string) error {
	units, err := loadUnits(cfgFile)
	if err != nil {
		return err
	}
	uc, ok := units[unitName]
	if !ok {
		return fmt.Errorf("no unit named %q, try \"fxq units\"", unitName)
	}

	inputs, err := readInputs(args)
	if err != nil {
		return err
	}

	// Workers get a unit and env each: an env is single-goroutine by
	// construction, and the units are cheap to build.
	results := make([]quantized, len(inputs))
	jobs := make(chan int)
	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < max(quantizeJobs, 1); w++ {
		g.Go(func() error {
			u, err := buildUnit(uc)
			if err != nil {
				return err
			}
			env := fxq.NewEnv()
			leave := env.Enter(u)
			defer leave()
			for i := range jobs {
				x := inputs[i]
				n, err := env.Float(x)
				if err != nil {
					results[i] = quantized{in: x, err: err}
					continue
				}
				results[i] = quantized{
					in:   x,
					rep:  n.String(),
					real: n.Float(),
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(jobs)
		for i := range inputs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	worst := 0.0
	for _, q := range results {
		if q.err != nil {
			p.Printf("%12g  error: %v\n", q.in, q.err)
			continue
		}
		e := q.real - q.in
		worst = math.Max(worst, math.Abs(e))
		p.Printf("%12g  %-24s  err %+.3g\n", q.in, q.rep, e)
	}
	p.Printf("quantized %d values, worst absolute error %.3g\n", len(inputs), worst)
	return nil
}

func readInputs(args []string) ([]float64, error) {
	if len(args) > 0 {
		out := make([]float64, len(args))
		for i, a := range args {
			x, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	}
	var out []float64
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		x, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, sc.Err()
}
