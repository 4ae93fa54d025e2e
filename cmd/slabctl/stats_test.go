package main

import (
	"strings"
	"testing"

	"github.com/joshuapare/slabkit/slab"
)

func TestStatsCommand(t *testing.T) {
	resetFlags()
	statsCount = 3

	output, err := captureOutput(t, func() error {
		return runStats([]string{"7", "100"})
	})
	if err != nil {
		t.Fatalf("runStats() error = %v", err)
	}

	assertContains(t, output, []string{"[slab] stats:", "km-8", "km-128", "total"})
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "km-8 ") && !strings.Contains(line, "used=   3") {
			t.Errorf("km-8 line should report 3 used objects: %q", line)
		}
	}
}

func TestStatsCommandJSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	statsShrink = true

	output, err := captureOutput(t, func() error {
		return runStats([]string{"2048"})
	})
	if err != nil {
		t.Fatalf("runStats() error = %v", err)
	}

	var doc struct {
		Caches []slab.Stats `json:"caches"`
	}
	assertJSON(t, output, &doc)
	if len(doc.Caches) != 9 {
		t.Fatalf("got %d caches, want 9", len(doc.Caches))
	}
	for _, st := range doc.Caches {
		want := 0
		if st.Name == "km-2048" {
			want = 1
		}
		if st.Slabs != want {
			t.Errorf("%s: %d slabs after shrink, want %d", st.Name, st.Slabs, want)
		}
	}
}

func TestStatsCommandErrors(t *testing.T) {
	resetFlags()
	if _, err := captureOutput(t, func() error { return runStats([]string{"abc"}) }); err == nil {
		t.Error("expected an error for a non-numeric size")
	}
	if _, err := captureOutput(t, func() error { return runStats([]string{"4096"}) }); err == nil {
		t.Error("expected an error for an oversized request")
	}
	if _, err := captureOutput(t, func() error { return runStats([]string{"0"}) }); err == nil {
		t.Error("expected an error for a zero-size request")
	}
}
