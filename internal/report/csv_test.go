package report

import (
	"math"
	"strings"
	"testing"

	"github.com/turbulence-data/vsf.report/internal/vsf"
)

func TestWriteBinsCSV(t *testing.T) {
	// Deliberately out of order; the writer sorts by distance.
	bins := []vsf.BinStat{
		{Distance: 2, Value: 0.5, Uncertainty: 0.25},
		{Distance: 1, Value: 0.2, Uncertainty: 0.1},
		{Distance: math.Sqrt2, Value: 0.4, Uncertainty: 0},
	}

	var buf strings.Builder
	if err := WriteBinsCSV(&buf, bins); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows:\n%s", len(lines), buf.String())
	}
	if lines[0] != "distance,value,uncertainty" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "1,0.2,0.1" {
		t.Errorf("first row = %q, want 1,0.2,0.1", lines[1])
	}
	if !strings.HasPrefix(lines[2], "1.41421") {
		t.Errorf("second row = %q, want sqrt(2) distance first", lines[2])
	}
	if lines[3] != "2,0.5,0.25" {
		t.Errorf("third row = %q, want 2,0.5,0.25", lines[3])
	}
}

func TestWriteBinsCSVEmpty(t *testing.T) {
	var buf strings.Builder
	if err := WriteBinsCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "distance,value,uncertainty\n" {
		t.Errorf("empty bins output = %q, want header only", got)
	}
}

func TestWriteBinsCSVNaN(t *testing.T) {
	// Constant grids produce NaN bins; they still round-trip as text.
	bins := []vsf.BinStat{{Distance: 1, Value: math.NaN(), Uncertainty: math.NaN()}}

	var buf strings.Builder
	if err := WriteBinsCSV(&buf, bins); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "1,NaN,NaN") {
		t.Errorf("output = %q, want NaN cells preserved", buf.String())
	}
}

func TestWriteLagBinsCSV(t *testing.T) {
	bins := []vsf.LagBinStat{
		{DRow: 1, DCol: -1, Value: 0.3, Uncertainty: 0.1},
		{DRow: 0, DCol: 1, Value: 0.4, Uncertainty: 0},
		{DRow: 1, DCol: 0, Value: 0, Uncertainty: 0},
	}

	var buf strings.Builder
	if err := WriteLagBinsCSV(&buf, bins); err != nil {
		t.Fatal(err)
	}

	want := "drow,dcol,value,uncertainty\n" +
		"0,1,0.4,0\n" +
		"1,-1,0.3,0.1\n" +
		"1,0,0,0\n"
	if buf.String() != want {
		t.Errorf("output:\n%q\nwant:\n%q", buf.String(), want)
	}
}
