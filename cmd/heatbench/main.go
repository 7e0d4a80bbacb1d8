// Package main implements heatbench, the experiment harness that compares
// the three execution strategies on identical inputs and records one CSV row
// per run.
//
// A sweep is the cross product of grid sizes with, per size: one sequential
// run, one threaded run per thread count, and one distributed run per worker
// count. Distributed runs start their workers in-process on ephemeral
// loopback ports, so the full wire protocol is exercised without external
// orchestration.
//
// Example usage:
//
//	./heatbench -sizes 50x50,100x100,200x200 -iterations 100 \
//	  -threads 1,2,4 -workers 1,2 -output results.csv
//
//	# Or drive the sweep from a YAML file
//	./heatbench -config sweep.yaml
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/grid"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/master"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/solver"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/worker"
)

// logFatal is a variable to allow mocking log.Fatalf in tests.
var logFatal = log.Fatalf

// csvHeader is the fixed column set of the results file.
var csvHeader = []string{"approach", "rows", "cols", "iterations", "threads", "workers", "seconds"}

// Sweep describes one benchmark campaign. The YAML field names match the
// flag names, so a -config file can express everything the flags can.
type Sweep struct {
	Sizes           []string `yaml:"sizes"`
	Iterations      int      `yaml:"iterations"`
	Threads         []int    `yaml:"threads"`
	Workers         []int    `yaml:"workers"`
	Output          string   `yaml:"output"`
	SkipDistributed bool     `yaml:"skip_distributed"`
	Boundary        float64  `yaml:"boundary"`
	Hot             bool     `yaml:"hot"`
	HotValue        float64  `yaml:"hot_value"`
	HotFraction     float64  `yaml:"hot_fraction"`
}

// row is one finished run.
type row struct {
	approach   string
	rows, cols int
	iterations int
	threads    string
	workers    string
	seconds    float64
}

func main() {
	sizes := flag.String("sizes", "50x50,100x100,200x200", "comma-separated grid sizes, ROWSxCOLS")
	iterations := flag.Int("iterations", 100, "iterations per run")
	threads := flag.String("threads", "1,2,4", "comma-separated thread counts for the threaded strategy")
	workers := flag.String("workers", "1,2", "comma-separated worker counts for the distributed strategy")
	output := flag.String("output", "results.csv", "path of the CSV results file")
	skipDistributed := flag.Bool("skip-distributed", false, "skip the distributed (sockets) runs")
	boundary := flag.Float64("boundary", 0, "fixed border temperature")
	hot := flag.Bool("hot", false, "seed a centered hot region in each initial grid")
	hotValue := flag.Float64("hot-value", 100, "hot region temperature")
	hotFraction := flag.Float64("hot-fraction", 0.1, "hot region side as a fraction of each grid dimension")
	config := flag.String("config", "", "YAML sweep file; when set it replaces the sweep flags")
	flag.Parse()

	sweep := Sweep{
		Sizes:           splitList(*sizes),
		Iterations:      *iterations,
		Threads:         mustParseInts(*threads),
		Workers:         mustParseInts(*workers),
		Output:          *output,
		SkipDistributed: *skipDistributed,
		Boundary:        *boundary,
		Hot:             *hot,
		HotValue:        *hotValue,
		HotFraction:     *hotFraction,
	}
	if *config != "" {
		loaded, err := loadSweep(*config)
		if err != nil {
			logFatal("heatbench: %v", err)
		}
		sweep = loaded
	}
	normalize(&sweep)

	rows, err := runSweep(sweep)
	if err != nil {
		logFatal("heatbench: %v", err)
	}
	if err := writeCSV(sweep.Output, rows); err != nil {
		logFatal("heatbench: %v", err)
	}
	log.Printf("heatbench: %d runs recorded in %s", len(rows), sweep.Output)
}

// loadSweep reads a YAML sweep file and fills unset fields with the flag
// defaults.
func loadSweep(path string) (Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sweep{}, fmt.Errorf("read sweep config: %w", err)
	}
	sweep := Sweep{
		Iterations:  100,
		Output:      "results.csv",
		HotValue:    100,
		HotFraction: 0.1,
	}
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return Sweep{}, fmt.Errorf("parse sweep config %s: %w", path, err)
	}
	return sweep, nil
}

// normalize sorts and deduplicates the count lists so a sloppy sweep file
// cannot run the same case twice.
func normalize(s *Sweep) {
	slices.Sort(s.Threads)
	s.Threads = slices.Compact(s.Threads)
	slices.Sort(s.Workers)
	s.Workers = slices.Compact(s.Workers)
}

// runSweep executes every case of the campaign in a fixed order.
func runSweep(sweep Sweep) ([]row, error) {
	var results []row
	for _, size := range sweep.Sizes {
		nRows, nCols, err := parseSize(size)
		if err != nil {
			return nil, err
		}
		var hot *grid.HotRegion
		if sweep.Hot {
			region := grid.CentralHotRegion(nRows, nCols, sweep.HotFraction, sweep.HotValue)
			hot = &region
		}

		log.Printf("heatbench: sequential %dx%d", nRows, nCols)
		res, err := solver.RunSequential(nRows, nCols, sweep.Iterations, sweep.Boundary, hot)
		if err != nil {
			return nil, err
		}
		results = append(results, row{
			approach: "sequential", rows: nRows, cols: nCols,
			iterations: sweep.Iterations, seconds: res.Elapsed.Seconds(),
		})

		for _, t := range sweep.Threads {
			log.Printf("heatbench: threaded %dx%d, %d threads", nRows, nCols, t)
			res, err := solver.RunThreaded(nRows, nCols, sweep.Iterations, t, sweep.Boundary, hot)
			if err != nil {
				return nil, err
			}
			results = append(results, row{
				approach: "threaded", rows: nRows, cols: nCols,
				iterations: sweep.Iterations, threads: strconv.Itoa(t),
				seconds: res.Elapsed.Seconds(),
			})
		}

		if sweep.SkipDistributed {
			continue
		}
		for _, w := range sweep.Workers {
			log.Printf("heatbench: distributed %dx%d, %d workers", nRows, nCols, w)
			res, err := runDistributed(nRows, nCols, sweep.Iterations, w, sweep.Boundary, hot)
			if err != nil {
				return nil, err
			}
			results = append(results, row{
				approach: "distributed", rows: nRows, cols: nCols,
				iterations: sweep.Iterations, workers: strconv.Itoa(w),
				seconds: res.Elapsed.Seconds(),
			})
		}
	}
	return results, nil
}

// runDistributed starts n workers on ephemeral loopback ports, runs the
// master against them, and waits for every worker session to finish.
func runDistributed(rows, cols, iterations, n int, boundary float64, hot *grid.HotRegion) (solver.Result, error) {
	addrs := make([]string, n)
	workersUp := make([]*worker.Worker, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		w, err := worker.New("127.0.0.1:0")
		if err != nil {
			return solver.Result{}, err
		}
		workersUp[i] = w
		addrs[i] = w.Addr()
		wg.Add(1)
		go func(i int, w *worker.Worker) {
			defer wg.Done()
			if err := w.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
				log.Printf("heatbench: worker %d: %v", i, err)
			}
		}(i, w)
	}
	defer func() {
		for _, w := range workersUp {
			w.Close()
		}
		wg.Wait()
	}()

	return master.Run(master.Config{
		Rows:       rows,
		Cols:       cols,
		Iterations: iterations,
		Workers:    addrs,
		Boundary:   boundary,
		Hot:        hot,
	})
}

// writeCSV records the finished runs with the fixed header.
func writeCSV(path string, rows []row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.approach,
			strconv.Itoa(r.rows),
			strconv.Itoa(r.cols),
			strconv.Itoa(r.iterations),
			r.threads,
			r.workers,
			fmt.Sprintf("%.6f", r.seconds),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// parseSize parses "ROWSxCOLS".
func parseSize(s string) (rows, cols int, err error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("size %q is not of the form ROWSxCOLS", s)
	}
	rows, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	cols, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	return rows, cols, nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// mustParseInts parses a comma-separated list of integers, treating a bad
// entry as a configuration error.
func mustParseInts(s string) []int {
	var out []int
	for _, part := range splitList(s) {
		v, err := strconv.Atoi(part)
		if err != nil {
			logFatal("heatbench: bad count %q in list %q", part, s)
		}
		out = append(out, v)
	}
	return out
}
