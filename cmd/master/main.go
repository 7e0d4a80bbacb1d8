// Package main implements the heat-diffusion master binary. It owns the
// authoritative grid, connects to every configured worker, drives the
// fixed-iteration distributed Jacobi loop, and prints the elapsed simulation
// time plus a summary of the final grid.
//
// Example usage:
//
//	# Two workers already listening on 5001 and 5002
//	./master -rows 200 -cols 200 -iterations 200 \
//	  -workers 127.0.0.1:5001,127.0.0.1:5002
//
//	# Seed a centered hot region covering 10% of each dimension
//	./master -rows 200 -cols 200 -iterations 200 \
//	  -workers 127.0.0.1:5001 -hot -hot-value 100 -hot-fraction 0.1
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/grid"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/master"
)

// logFatal is a variable to allow mocking log.Fatalf in tests.
var logFatal = log.Fatalf

func main() {
	rows := flag.Int("rows", 200, "number of grid rows")
	cols := flag.Int("cols", 200, "number of grid columns")
	iterations := flag.Int("iterations", 200, "number of Jacobi iterations")
	workers := flag.String("workers", "", "comma-separated worker addresses, one block per address")
	boundary := flag.Float64("boundary", 0, "fixed border temperature")
	hot := flag.Bool("hot", false, "seed a centered hot region in the initial grid")
	hotValue := flag.Float64("hot-value", 100, "hot region temperature")
	hotFraction := flag.Float64("hot-fraction", 0.1, "hot region side as a fraction of each grid dimension")
	timeout := flag.Duration("timeout", master.DefaultReplyTimeout, "per-reply deadline before a worker is declared lost")
	trace := flag.String("trace", "", "GoVector process name; enables vector-clock tracing when set")
	flag.Parse()

	addrs := splitAddrs(*workers)
	if len(addrs) == 0 {
		logFatal("master: no worker addresses given (use -workers host:port,host:port)")
	}

	cfg := master.Config{
		Rows:         *rows,
		Cols:         *cols,
		Iterations:   *iterations,
		Workers:      addrs,
		Boundary:     *boundary,
		ReplyTimeout: *timeout,
		Trace:        *trace,
	}
	if *hot {
		region := grid.CentralHotRegion(*rows, *cols, *hotFraction, *hotValue)
		cfg.Hot = &region
	}

	log.Printf("master: connecting to %d workers", len(addrs))
	res, err := master.Run(cfg)
	if err != nil {
		logFatal("master: %v", err)
	}

	lo, hi := res.Grid.MinMax()
	fmt.Printf("elapsed: %s (%.6f s)\n", res.Elapsed.Round(time.Microsecond), res.Elapsed.Seconds())
	fmt.Printf("final grid -> min: %.2f max: %.2f checksum: %.6f\n", lo, hi, res.Grid.Checksum())
}

// splitAddrs parses the -workers flag, dropping empty entries so trailing
// commas are harmless.
func splitAddrs(s string) []string {
	var addrs []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			addrs = append(addrs, part)
		}
	}
	return addrs
}
