/*
Copyright © 2019 the ClimGrid authors.
This file is part of ClimGrid.

ClimGrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ClimGrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ClimGrid.  If not, see <http://www.gnu.org/licenses/>.*/

package climgridutil

import (
	"bytes"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
)

// writeTestFile writes a NetCDF file with a 2x4 rectilinear grid (cell
// vertices at the integers) and a tas variable holding t*8+j*4+i at time
// t, latitude j, longitude i.
func writeTestFile(t *testing.T, dir, name string, timeVals []float64, units string) string {
	t.Helper()
	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{len(timeVals), 2, 4})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", units)
	h.AddAttribute("time", "calendar", "noleap")
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddVariable("tas", []string{"time", "lat", "lon"}, []float64{0})
	h.Define()

	path := filepath.Join(dir, name)
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	write := func(v string, data interface{}, n int) {
		w := f.Writer(v, []int{0}, []int{n})
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	write("time", timeVals, len(timeVals))
	write("lat", []float64{0.5, 1.5}, 2)
	write("lon", []float64{0.5, 1.5, 2.5, 3.5}, 4)
	tas := make([]float64, len(timeVals)*2*4)
	for i := range tas {
		tas[i] = float64(i)
	}
	w := f.Writer("tas", []int{0, 0, 0}, []int{len(timeVals), 2, 4})
	if _, err := w.Write(tas); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCommand executes a subcommand and returns its printed output.
func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	Root.SetOutput(buf)
	Root.SetArgs(args)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestNearestCmd(t *testing.T) {
	dir, err := ioutil.TempDir("", "climgrid")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f := writeTestFile(t, dir, "a.nc", []float64{0}, "days since 2001-01-01")

	Cfg.Set("files", []string{f})
	Cfg.Set("lon", 1.4)
	Cfg.Set("lat", 0.6)
	out := runCommand(t, "nearest")
	if !strings.Contains(out, "i 1 j 0") {
		t.Errorf("output: %q", out)
	}
}

func TestSubsetCmd(t *testing.T) {
	dir, err := ioutil.TempDir("", "climgrid")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f := writeTestFile(t, dir, "a.nc", []float64{0}, "days since 2001-01-01")

	Cfg.Set("files", []string{f})
	Cfg.Set("bbox", "1,1,3,2")
	out := runCommand(t, "subset")
	if !strings.Contains(out, "x 1:3 y 1:2") {
		t.Errorf("output: %q", out)
	}
}

func TestAverageCmd(t *testing.T) {
	dir, err := ioutil.TempDir("", "climgrid")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f := writeTestFile(t, dir, "a.nc", []float64{0, 1}, "days since 2001-01-01")

	Cfg.Set("files", []string{f})
	Cfg.Set("varname", "tas")
	Cfg.Set("bbox", "1,1,2,2")
	out := runCommand(t, "average")
	// The polygon coincides with cell (lat 1, lon 1): values 5 and 13.
	fields := strings.Fields(out)
	if len(fields) != 2 {
		t.Fatalf("output: %q", out)
	}
	for i, want := range []float64{5, 13} {
		got, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			t.Fatalf("output: %q: %v", out, err)
		}
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("step %d: %v != %v", i, got, want)
		}
	}
}

func TestTimeindexCmd(t *testing.T) {
	dir, err := ioutil.TempDir("", "climgrid")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f1 := writeTestFile(t, dir, "a.nc", []float64{0, 1, 2}, "days since 2001-01-01")
	f2 := writeTestFile(t, dir, "b.nc", []float64{3, 4}, "days since 2001-01-01")

	Cfg.Set("files", []string{f1, f2})
	Cfg.Set("instant", "2001-01-05T00:00:00")
	out := runCommand(t, "timeindex")
	if !strings.Contains(out, "b.nc index 1") {
		t.Errorf("instant output: %q", out)
	}

	Cfg.Set("instant", "")
	Cfg.Set("step", 3)
	out = runCommand(t, "timeindex")
	if !strings.Contains(out, "b.nc index 0") {
		t.Errorf("step output: %q", out)
	}
}

func TestParseBBox(t *testing.T) {
	poly, err := parseBBox("-10, -5, 10.5, 5")
	if err != nil {
		t.Fatal(err)
	}
	b := poly.Bounds()
	if b.Min.X != -10 || b.Min.Y != -5 || b.Max.X != 10.5 || b.Max.Y != 5 {
		t.Errorf("bounds: %+v", b)
	}
	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "3,1,2,4", "1,4,2,3"} {
		if _, err := parseBBox(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestQueryPolygonGeoJSON(t *testing.T) {
	dir, err := ioutil.TempDir("", "climgrid")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "poly.geojson")
	data := `{"type":"Polygon","coordinates":[[[1,1],[2,1],[2,2],[1,2],[1,1]]]}`
	if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	poly, err := queryPolygon(path, "")
	if err != nil {
		t.Fatal(err)
	}
	b := poly.Bounds()
	if b.Min.X != 1 || b.Max.X != 2 || b.Min.Y != 1 || b.Max.Y != 2 {
		t.Errorf("bounds: %+v", b)
	}
	if _, err := queryPolygon("", ""); err == nil {
		t.Error("no polygon or bbox: expected error")
	}
}
