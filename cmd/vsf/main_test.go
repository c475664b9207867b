package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/turbulence-data/vsf.report/internal/monitoring"
	"github.com/turbulence-data/vsf.report/internal/report"
	"github.com/turbulence-data/vsf.report/internal/timeutil"
	"github.com/turbulence-data/vsf.report/internal/units"
	"github.com/turbulence-data/vsf.report/internal/vsf"
)

func TestRunEndToEnd(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(nil)

	input := filepath.Join(t.TempDir(), "field.csv")
	csv := "0,10,0\n10,0,10\n0,10,nan\n"
	if err := os.WriteFile(input, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	cfg := &Config{
		Input:       input,
		OutputDir:   outDir,
		Order:       1,
		Workers:     2,
		Units:       "pixel",
		Directional: true,
	}
	clock := timeutil.NewMockClock(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))

	if err := run(cfg, clock); err != nil {
		t.Fatal(err)
	}

	binsData, err := os.ReadFile(filepath.Join(outDir, "field_bins.csv"))
	if err != nil {
		t.Fatalf("bins CSV not written: %v", err)
	}
	if !strings.HasPrefix(string(binsData), "distance,value,uncertainty\n") {
		t.Errorf("bins CSV header missing:\n%s", binsData)
	}
	if len(strings.Split(strings.TrimSpace(string(binsData)), "\n")) < 3 {
		t.Errorf("bins CSV has too few rows:\n%s", binsData)
	}

	if _, err := os.Stat(filepath.Join(outDir, "field_lag_bins.csv")); err != nil {
		t.Errorf("lag bins CSV not written: %v", err)
	}

	sumData, err := os.ReadFile(filepath.Join(outDir, "field_summary.json"))
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	var s report.Summary
	if err := json.Unmarshal(sumData, &s); err != nil {
		t.Fatal(err)
	}
	if s.GridHeight != 3 || s.GridWidth != 3 {
		t.Errorf("summary grid = %dx%d, want 3x3", s.GridHeight, s.GridWidth)
	}
	if s.FiniteCells != 8 {
		t.Errorf("summary finite cells = %d, want 8", s.FiniteCells)
	}
	if s.Order != 1 || s.Units != "pixel" {
		t.Errorf("summary params = order %d units %s", s.Order, s.Units)
	}
	if s.RunID == "" {
		t.Error("summary run ID is empty")
	}
	if !s.GeneratedAt.Equal(clock.Now()) {
		t.Errorf("summary stamp = %v, want mock clock time", s.GeneratedAt)
	}
}

func TestRunInvalidUnits(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(nil)

	input := filepath.Join(t.TempDir(), "field.csv")
	if err := os.WriteFile(input, []byte("1,2\n3,4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Input: input, OutputDir: t.TempDir(), Order: 1, Units: "furlong"}
	if err := run(cfg, timeutil.RealClock{}); err == nil {
		t.Error("expected error for invalid units")
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"field.csv", "field"},
		{"/data/ngc4696_velocity.csv", "ngc4696_velocity"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.in); got != tt.want {
			t.Errorf("outputBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertBins(t *testing.T) {
	bins := []vsf.BinStat{{Distance: 10, Value: 0.5, Uncertainty: 0.1}}
	scale := units.Scale{ArcsecPerPixel: 0.1, ParsecPerArcsec: 214}

	out := convertBins(bins, units.Arcsec, scale)
	if out[0].Distance != 1 {
		t.Errorf("arcsec distance = %v, want 1", out[0].Distance)
	}
	if out[0].Value != 0.5 || out[0].Uncertainty != 0.1 {
		t.Error("conversion must not touch values or uncertainties")
	}
	if bins[0].Distance != 10 {
		t.Error("conversion must not mutate the input slice")
	}

	same := convertBins(bins, units.Pixel, scale)
	if &same[0] != &bins[0] {
		t.Error("pixel output should return the input unchanged")
	}
}
