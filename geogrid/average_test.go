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

package geogrid

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// unitRectGrid builds a rectilinear grid whose cell vertices are the
// integers 0..4 in longitude and 0..3 in latitude.
func unitRectGrid(t *testing.T) *Grid {
	return rectGrid(t,
		[]float64{0.5, 1.5, 2.5, 3.5},
		[]float64{0.5, 1.5, 2.5})
}

func TestCellWeightsSingleCell(t *testing.T) {
	g := unitRectGrid(t)
	// The polygon coincides with cell (lon 1, lat 1).
	weights, sub, err := g.CellWeights(box(1, 1, 2, 2))
	if err != nil {
		t.Fatal(err)
	}
	wantShape := []int{3, 4} // (nLat, nLon)
	if !intsEqual(weights.GetShape(), wantShape) {
		t.Fatalf("shape: %v != %v", weights.GetShape(), wantShape)
	}
	if (sub.X != Slice{1, 2}) || (sub.Y != Slice{1, 2}) {
		t.Errorf("subdomain: X=%v Y=%v", sub.X, sub.Y)
	}
	if w := weights.Get(1, 1); math.Abs(w-1) > 1e-9 {
		t.Errorf("cell weight: %v != 1", w)
	}
	if s := floats.Sum(weights.Elements); math.Abs(s-1) > 1e-9 {
		t.Errorf("weight sum: %v != 1", s)
	}
}

func TestCellWeightsTwoCells(t *testing.T) {
	g := unitRectGrid(t)
	// The polygon covers cells (1,1) and (2,1), which mirror each other
	// in longitude about the polygon centroid, so the equal-area weights
	// split evenly.
	weights, _, err := g.CellWeights(box(1, 1, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	w1, w2 := weights.Get(1, 1), weights.Get(1, 2)
	if math.Abs(w1-0.5) > 1e-6 || math.Abs(w2-0.5) > 1e-6 {
		t.Errorf("weights: %v %v", w1, w2)
	}
}

func TestCellWeightsPartialCoverage(t *testing.T) {
	g := unitRectGrid(t)
	// Half of cell (1,1) and all of cell (2,1): weights proportional to
	// the overlap areas, which are nearly equal-area here.
	weights, _, err := g.CellWeights(box(1.5, 1, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	w1, w2 := weights.Get(1, 1), weights.Get(1, 2)
	if math.Abs(w1-1./3) > 1e-3 || math.Abs(w2-2./3) > 1e-3 {
		t.Errorf("weights: %v %v", w1, w2)
	}
	if s := floats.Sum(weights.Elements); math.Abs(s-1) > 1e-9 {
		t.Errorf("weight sum: %v != 1", s)
	}
}

func TestCellWeightsErrors(t *testing.T) {
	// Point lists have no cell geometry.
	g := pointGrid(t, []float64{1, 2}, []float64{1, 2})
	if _, _, err := g.CellWeights(box(0, 0, 3, 3)); err == nil {
		t.Error("point list: expected error")
	}
	// Polygon outside the grid.
	if _, _, err := unitRectGrid(t).CellWeights(box(20, 20, 25, 25)); err == nil {
		t.Error("outside polygon: expected error")
	}
}

func TestSpatialWeightedAverageScalar(t *testing.T) {
	g := unitRectGrid(t)
	field := sparse.ZerosDense(3, 4)
	field.Set(7, 1, 1)
	field.Set(99, 0, 0) // outside the polygon, must not contribute
	reduced, weights, err := g.SpatialWeightedAverage(field, [2]int{0, 1}, box(1, 1, 2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if !intsEqual(reduced.GetShape(), []int{1}) {
		t.Fatalf("shape: %v", reduced.GetShape())
	}
	if v := reduced.Get(0); math.Abs(v-7) > 1e-9 {
		t.Errorf("average: %v != 7", v)
	}
	if w := weights.Get(1, 1); math.Abs(w-1) > 1e-9 {
		t.Errorf("weight: %v != 1", w)
	}
}

func TestSpatialWeightedAverageTimeSeries(t *testing.T) {
	g := unitRectGrid(t)
	// A (time, lat, lon) field; each time step averages independently.
	field := sparse.ZerosDense(2, 3, 4)
	field.Set(4, 0, 1, 1)
	field.Set(8, 0, 1, 2)
	field.Set(10, 1, 1, 1)
	field.Set(14, 1, 1, 2)
	reduced, _, err := g.SpatialWeightedAverage(field, [2]int{1, 2}, box(1, 1, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if !intsEqual(reduced.GetShape(), []int{2}) {
		t.Fatalf("shape: %v", reduced.GetShape())
	}
	if v := reduced.Get(0); math.Abs(v-6) > 1e-6 {
		t.Errorf("step 0: %v != 6", v)
	}
	if v := reduced.Get(1); math.Abs(v-12) > 1e-6 {
		t.Errorf("step 1: %v != 12", v)
	}
}

func TestSpatialWeightedAverageAxisErrors(t *testing.T) {
	g := unitRectGrid(t)
	field := sparse.ZerosDense(3, 4)
	if _, _, err := g.SpatialWeightedAverage(field, [2]int{0, 5}, box(1, 1, 2, 2)); err == nil {
		t.Error("out-of-range axis: expected error")
	}
	// Axes swapped: lengths no longer match the weight grid.
	if _, _, err := g.SpatialWeightedAverage(field, [2]int{1, 0}, box(1, 1, 2, 2)); err == nil {
		t.Error("swapped axes: expected error")
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
