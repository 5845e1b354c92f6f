//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// notifySignals wires ch to the shutdown signals: SIGINT and SIGTERM
// on Unix systems.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}
