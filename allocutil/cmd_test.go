/*
Copyright © 2024 the ArealAlloc authors.
This file is part of ArealAlloc.

ArealAlloc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ArealAlloc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ArealAlloc.  If not, see <http://www.gnu.org/licenses/>.
*/

package allocutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/arealalloc"
	"github.com/spatialmodel/arealalloc/pointproc"
)

// resetConfig restores every option to its default when the test ends.
func resetConfig(t *testing.T) {
	Cfg.Set("loglevel", "error")
	t.Cleanup(func() {
		for _, option := range options {
			Cfg.Set(option.name, option.defaultVal)
		}
	})
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var b bytes.Buffer
	Root.SetOutput(&b)
	Root.SetArgs(args)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

const pngSignature = "\x89PNG\r\n\x1a\n"

func checkPNG(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte(pngSignature)) {
		t.Errorf("%s is not a PNG image", path)
	}
}

func TestVersion(t *testing.T) {
	resetConfig(t)
	out := execute(t, "version")
	if want := fmt.Sprintf("ArealAlloc v%s\n", arealalloc.Version); out != want {
		t.Errorf("have %q, want %q", out, want)
	}
}

func TestEstimate(t *testing.T) {
	for _, dim := range []int{1, 2} {
		t.Run(fmt.Sprintf("%dd", dim), func(t *testing.T) {
			resetConfig(t)
			Cfg.Set("dim", dim)
			Cfg.Set("seed", 3)
			out := execute(t, "estimate")

			s, err := drawSettings(Cfg)
			if err != nil {
				t.Fatal(err)
			}
			q := arealalloc.Rect{
				X: arealalloc.Interval{Lo: 0.1, Hi: 0.35},
				Y: arealalloc.Interval{Lo: 0.1, Hi: 0.35},
			}
			e, err := Estimate(s, 0.1, 0, q)
			if err != nil {
				t.Fatal(err)
			}
			var want bytes.Buffer
			if err := e.Write(&want); err != nil {
				t.Fatal(err)
			}
			if out != want.String() {
				t.Errorf("have %q, want %q", out, want.String())
			}
			wantCells := 10
			if dim == 2 {
				wantCells = 100
			}
			if e.Cells != wantCells {
				t.Errorf("cells: have %d, want %d", e.Cells, wantCells)
			}
			if e.Points == 0 {
				t.Error("no points drawn")
			}
		})
	}
}

func TestSimulate(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "ratio.png")
	Cfg.Set("mode", "fixed")
	Cfg.Set("trials", 20)
	Cfg.Set("gridwidths", []string{"0.25", "0.125"})
	Cfg.Set("querywidths", []string{"0.5", "0.375"})
	Cfg.Set("figure", "ratio")
	Cfg.Set("output", out)
	table := execute(t, "simulate")

	lines := strings.Split(strings.TrimSpace(table), "\n")
	if len(lines) != 3 {
		t.Fatalf("have %d table lines, want 3:\n%s", len(lines), table)
	}
	if !strings.Contains(lines[0], "proportional MAPE") {
		t.Errorf("missing header: %s", lines[0])
	}
	checkPNG(t, out)
}

func TestSimulatePlan(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.toml")
	const doc = `
Trials = 10
Seed = 4

[[Pair]]
GridWidth = 0.1
QueryWidth = 0.2
`
	if err := os.WriteFile(plan, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	Cfg.Set("plan", plan)
	s, err := drawSettings(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	c, err := experimentConfig(Cfg, s)
	if err != nil {
		t.Fatal(err)
	}
	if c.Trials != 10 || c.Seed != 4 {
		t.Errorf("trials and seed: have %d and %d, want 10 and 4", c.Trials, c.Seed)
	}
	if diff := cmp.Diff([]float64{0.1}, c.GridWidths); diff != "" {
		t.Errorf("grid widths (-want +have):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.2}, c.QueryWidths); diff != "" {
		t.Errorf("query widths (-want +have):\n%s", diff)
	}
	table := execute(t, "simulate")
	if n := len(strings.Split(strings.TrimSpace(table), "\n")); n != 2 {
		t.Errorf("have %d table lines, want 2:\n%s", n, table)
	}
}

func TestSample(t *testing.T) {
	for _, dim := range []int{1, 2} {
		for _, process := range []string{"poisson", "neymanscott", "lgcp"} {
			t.Run(fmt.Sprintf("%s_%dd", process, dim), func(t *testing.T) {
				resetConfig(t)
				out := filepath.Join(t.TempDir(), "sample.png")
				Cfg.Set("dim", dim)
				Cfg.Set("process", process)
				Cfg.Set("resolution", 20)
				Cfg.Set("output", out)
				execute(t, "sample")
				checkPNG(t, out)
			})
		}
	}
}

func TestDrawSettings(t *testing.T) {
	resetConfig(t)
	Cfg.Set("dim", 2)
	Cfg.Set("process", "NeymanScott")
	s, err := drawSettings(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := pointproc.NeymanScott2D{ParentRate: 10, OffspringMean: 10, Sigma: 0.02}
	if s.Process2D != pointproc.Process2D(want) {
		t.Errorf("have %#v, want %#v", s.Process2D, want)
	}
	if s.Process1D != nil {
		t.Errorf("1D process should not be set: %#v", s.Process1D)
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		option string
		value  interface{}
		args   []string
		err    string
	}{
		{"dim", 3, []string{"estimate"}, "dim must be 1 or 2"},
		{"process", "hawkes", []string{"estimate"}, `invalid process "hawkes"`},
		{"seed", -1, []string{"sample"}, "seed must not be negative"},
		{"mode", "sideways", []string{"simulate"}, `invalid mode "sideways"`},
		{"figure", "pie", []string{"simulate"}, `invalid figure "pie"`},
		{"querywidths", []string{"0.1", "abc"}, []string{"simulate"}, "querywidths"},
		{"logformat", "xml", []string{"version"}, `invalid log format "xml"`},
		{"loglevel", "loud", []string{"version"}, "not a valid logrus Level"},
		{"plan", "does-not-exist.toml", []string{"simulate"}, "opening plan"},
		{"output", "", []string{"sample"}, "requires an output file"},
	}
	for _, test := range tests {
		t.Run(test.option, func(t *testing.T) {
			resetConfig(t)
			Cfg.Set(test.option, test.value)
			Root.SetOutput(new(bytes.Buffer))
			Root.SetArgs(test.args)
			err := Root.Execute()
			if err == nil || !strings.Contains(err.Error(), test.err) {
				t.Errorf("have error %v, want %q", err, test.err)
			}
		})
	}
}

func TestToFloat64SliceE(t *testing.T) {
	tests := []struct {
		in   interface{}
		want []float64
	}{
		{[]string{"0.1", " 0.2"}, []float64{0.1, 0.2}},
		{[]interface{}{0.1, int64(2)}, []float64{0.1, 2}},
		{"0.1,0.2 0.3", []float64{0.1, 0.2, 0.3}},
		{[]float64{4}, []float64{4}},
	}
	for _, test := range tests {
		have, err := toFloat64SliceE(test.in)
		if err != nil {
			t.Errorf("%#v: %v", test.in, err)
			continue
		}
		if diff := cmp.Diff(test.want, have); diff != "" {
			t.Errorf("%#v (-want +have):\n%s", test.in, diff)
		}
	}
	if _, err := toFloat64SliceE([]string{"x"}); err == nil {
		t.Error("expected an error for a non-numeric width")
	}
}

func TestSetLogging(t *testing.T) {
	resetConfig(t)
	Cfg.Set("loglevel", "debug")
	Cfg.Set("logformat", "json")
	log := logrus.New()
	if err := setLogging(Cfg, log); err != nil {
		t.Fatal(err)
	}
	if log.Level != logrus.DebugLevel {
		t.Errorf("level: have %v, want debug", log.Level)
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter: have %T, want *logrus.JSONFormatter", log.Formatter)
	}
}
