package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}

// assertJSON checks that output is valid JSON and decodes it into v when v
// is not nil
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	if v == nil {
		var result any
		v = &result
	}
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	logLevel = ""
	logJSON = false

	selftestSlots = 10000
	selftestOps = 60000
	selftestSeed = 88172645463325252
	selftestOOBRate = 0
	selftestDFreeRate = 0
	selftestNoDebug = false
	selftestHalt = false
	selftestPages = 0

	statsCount = 1
	statsShrink = false
	statsNoDebug = false

	benchProcs = 1
	benchIters = 5000
	benchIO = false
	benchMsgSize = defaultMsgSize
	benchPages = 4096
}
