//go:build windows

package main

import (
	"os"
	"os/signal"
)

// notifySignals wires ch to the shutdown signals. Windows has no
// SIGTERM, so only Ctrl+C is caught.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
