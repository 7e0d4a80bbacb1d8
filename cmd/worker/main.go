// Package main implements the heat-diffusion worker binary: one process, one
// block of the grid, one control connection from the master.
//
// The worker listens until the master connects, then serves exactly one
// session (further connection attempts are refused), computing one Jacobi
// step per iteration request until the stop message arrives.
//
// Example usage:
//
//	# Start a worker on port 5001
//	./worker -listen :5001
//
//	# Start a traced worker (the master must trace too)
//	./worker -listen :5001 -trace worker0
package main

import (
	"errors"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/protocol"
	"github.com/Yuri-Coding/HeatDiffusion-Grupo7/internal/worker"
)

// logFatal is a variable to allow mocking log.Fatalf in tests.
var logFatal = log.Fatalf

func main() {
	listen := flag.String("listen", ":5001", "TCP address to listen on for the master's connection")
	trace := flag.String("trace", "", "GoVector process name; enables vector-clock tracing when set")
	flag.Parse()

	w, err := worker.New(*listen)
	if err != nil {
		logFatal("worker: %v", err)
	}
	if *trace != "" {
		w.SetTrace(protocol.NewTracer(*trace))
	}
	log.Printf("worker listening on %s", w.Addr())

	// A signal closes the listener, which unblocks Serve if no session has
	// started yet. An in-flight session runs to its stop message.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		w.Close()
	}()

	if err := w.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
		logFatal("worker: %v", err)
	}
	log.Println("worker stopped")
}
