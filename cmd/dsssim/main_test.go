package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRootCmd creates a root command with persistent flags for testing subcommands
func newTestRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "dsssim",
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	return rootCmd
}

// captureStdout redirects os.Stdout for the duration of fn. Commands
// encode JSON straight to os.Stdout, so SetOut alone does not cut it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()
	w.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	return buf.String()
}

func TestVersionJSON(t *testing.T) {
	out := captureStdout(t, func() {
		rootCmd := newTestRootCmd()
		rootCmd.AddCommand(newVersionCmd())
		rootCmd.SetArgs([]string{"version", "--json"})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("version failed: %v", err)
		}
	})

	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("version --json produced invalid JSON: %v\noutput: %s", err, out)
	}
	if got["version"] == "" {
		t.Error("expected non-empty version field")
	}
}

func TestSimulateJSONCleanChannel(t *testing.T) {
	out := captureStdout(t, func() {
		rootCmd := newTestRootCmd()
		rootCmd.AddCommand(newSimulateCmd())
		rootCmd.SetArgs([]string{
			"simulate", "--json",
			"--message", "HI",
			"--tx-secret", "test-key",
			"--chip-rate", "50000",
			"--carrier-freq", "500000",
			"--oversampling", "4",
		})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("simulate failed: %v", err)
		}
	})

	var got simulateOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("simulate --json produced invalid JSON: %v\noutput: %s", err, out)
	}
	if got.DecodedMessage != "HI" {
		t.Errorf("decoded %q, want %q", got.DecodedMessage, "HI")
	}
	if got.Mismatch {
		t.Error("tx and rx secrets match, mismatch should be false")
	}
	if got.SimulationID == "" {
		t.Error("expected a simulation id")
	}
	if len(got.Stages) != 6 {
		t.Errorf("expected 6 stage taps, got %d", len(got.Stages))
	}
}

func TestSimulateMismatchedSecrets(t *testing.T) {
	out := captureStdout(t, func() {
		rootCmd := newTestRootCmd()
		rootCmd.AddCommand(newSimulateCmd())
		rootCmd.SetArgs([]string{
			"simulate", "--json",
			"--message", "HI",
			"--tx-secret", "test-key",
			"--rx-secret", "other-key",
			"--chip-rate", "50000",
			"--carrier-freq", "500000",
			"--oversampling", "4",
		})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("simulate failed: %v", err)
		}
	})

	var got simulateOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("simulate --json produced invalid JSON: %v\noutput: %s", err, out)
	}
	if !got.Mismatch {
		t.Error("different secrets should be reported as a mismatch")
	}
}

func TestSimulateRejectsUnknownScheme(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"simulate", "--scheme", "turbo"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected an error for an unsupported coding scheme")
	}
	if !strings.Contains(err.Error(), "unsupported coding scheme") {
		t.Errorf("unexpected error: %v", err)
	}
}
