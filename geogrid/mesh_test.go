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
	"reflect"
	"testing"
)

func TestRectilinearCentroidsToVertices(t *testing.T) {
	lonV, latV := RectilinearCentroidsToVertices(
		[]float64{1, 2, 3, 4}, []float64{2, 7, 8}, BoundsNone, MeshBounds{})
	wantLon := []float64{0.5, 1.5, 2.5, 3.5, 4.5}
	wantLat := []float64{-0.5, 4.5, 7.5, 8.5}
	if !reflect.DeepEqual(lonV, wantLon) {
		t.Errorf("lon vertices: %v != %v", lonV, wantLon)
	}
	if !reflect.DeepEqual(latV, wantLat) {
		t.Errorf("lat vertices: %v != %v", latV, wantLat)
	}
}

func TestRectilinearRoundTrip(t *testing.T) {
	lon := []float64{0.5, 1.5, 2.5, 3.5}
	lat := []float64{2, 7, 8}
	lonV, latV := RectilinearCentroidsToVertices(lon, lat, BoundsNone, MeshBounds{})
	lonBack, latBack := RectilinearVerticesToCentroids(lonV, latV)
	for i := range lon {
		if math.Abs(lonBack[i]-lon[i]) > 1e-12 {
			t.Errorf("lon %d: %v != %v", i, lonBack[i], lon[i])
		}
	}
	for j := range lat {
		if math.Abs(latBack[j]-lat[j]) > 1e-12 {
			t.Errorf("lat %d: %v != %v", j, latBack[j], lat[j])
		}
	}
}

func TestRectilinearBoundsOptions(t *testing.T) {
	b := MeshBounds{LowerX: -180, UpperX: 180, LowerY: -90, UpperY: 90}

	// Forced bounds overwrite the border vertices.
	lonV, latV := RectilinearCentroidsToVertices(
		[]float64{-179.5, 0, 179.5}, []float64{-89.9, 0, 89.9}, BoundsForced, b)
	if lonV[0] != -180 || lonV[len(lonV)-1] != 180 {
		t.Errorf("forced lon: %v", lonV)
	}
	if latV[0] != -90 || latV[len(latV)-1] != 90 {
		t.Errorf("forced lat: %v", latV)
	}

	// A descending axis gets the upper bound at index 0.
	_, latV = RectilinearCentroidsToVertices(
		[]float64{-179.5, 0, 179.5}, []float64{89.9, 0, -89.9}, BoundsForced, b)
	if latV[0] != 90 || latV[len(latV)-1] != -90 {
		t.Errorf("forced descending lat: %v", latV)
	}

	// Limiting only moves vertices outside the bounds.
	lonV, latV = RectilinearCentroidsToVertices(
		[]float64{-179.5, 0, 179.5}, []float64{-80, 0, 80}, BoundsLimit, b)
	if lonV[0] != -180 || lonV[len(lonV)-1] != 180 {
		t.Errorf("limited lon: %v", lonV)
	}
	// The extrapolated lat borders (-120 and 120) overshoot ±90 and clamp.
	if latV[0] != -90 || latV[len(latV)-1] != 90 {
		t.Errorf("limited lat: %v", latV)
	}
	_, latV = RectilinearCentroidsToVertices(
		[]float64{-179.5, 0, 179.5}, []float64{-45, 0, 45}, BoundsLimit, b)
	if latV[0] != -67.5 || latV[len(latV)-1] != 67.5 {
		t.Errorf("limited lat within bounds: %v", latV)
	}
}

func TestRectilinear2DBoundsToVertices(t *testing.T) {
	lonBnds := dense2(3, 1, 2, 2, 3, 3, 4)
	latBnds := dense2(2, 10, 12, 12, 13)
	lonV, latV, err := Rectilinear2DBoundsToVertices(lonBnds, latBnds)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lonV, []float64{1, 2, 3, 4}) {
		t.Errorf("lon vertices: %v", lonV)
	}
	if !reflect.DeepEqual(latV, []float64{10, 12, 13}) {
		t.Errorf("lat vertices: %v", latV)
	}
	if _, _, err := Rectilinear2DBoundsToVertices(dense1(1, 2, 3), latBnds); err == nil {
		t.Error("1-d bounds: expected error")
	}
	if _, _, err := Rectilinear2DBoundsToVertices(dense2(2, 1, 2, 3, 4, 5, 6), latBnds); err == nil {
		t.Error("(N,3) bounds: expected error")
	}
}

func TestQuadrilateralsMeshRoundTripInterior(t *testing.T) {
	// A sheared but locally linear mesh round-trips exactly in the
	// interior; the border ring is extrapolated and not checked.
	lon := dense2(4,
		0, 3, 6,
		1, 4, 7,
		2, 5, 8,
		3, 6, 9)
	lat := dense2(4,
		0, 0.5, 1,
		2, 2.5, 3,
		4, 4.5, 5,
		6, 6.5, 7)
	lonV, latV := CentroidsToQuadrilateralsMesh(lon, lat, BoundsNone, MeshBounds{})
	wantShape := []int{5, 4}
	if !reflect.DeepEqual(lonV.GetShape(), wantShape) {
		t.Fatalf("vertex shape: %v != %v", lonV.GetShape(), wantShape)
	}
	lonBack, latBack := QuadrilateralsMeshToCentroids(lonV, latV)
	for i := 1; i < 3; i++ {
		for j := 1; j < 2; j++ {
			if math.Abs(lonBack.Get(i, j)-lon.Get(i, j)) > 1e-12 {
				t.Errorf("lon (%d,%d): %v != %v", i, j, lonBack.Get(i, j), lon.Get(i, j))
			}
			if math.Abs(latBack.Get(i, j)-lat.Get(i, j)) > 1e-12 {
				t.Errorf("lat (%d,%d): %v != %v", i, j, latBack.Get(i, j), lat.Get(i, j))
			}
		}
	}
}

func TestQuadrilateralsMeshRegular(t *testing.T) {
	// On a regular unit mesh the extrapolated vertices are the exact cell
	// corners everywhere, border included.
	lon := dense2(3,
		0.5, 1.5,
		0.5, 1.5,
		0.5, 1.5)
	lat := dense2(3,
		0.5, 0.5,
		1.5, 1.5,
		2.5, 2.5)
	lonV, latV := CentroidsToQuadrilateralsMesh(lon, lat, BoundsNone, MeshBounds{})
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(lonV.Get(i, j)-float64(j)) > 1e-12 {
				t.Errorf("lon vertex (%d,%d): %v != %v", i, j, lonV.Get(i, j), float64(j))
			}
			if math.Abs(latV.Get(i, j)-float64(i)) > 1e-12 {
				t.Errorf("lat vertex (%d,%d): %v != %v", i, j, latV.Get(i, j), float64(i))
			}
		}
	}
}

func TestQuadrilateralsMeshForcedBounds(t *testing.T) {
	b := MeshBounds{LowerX: -1, UpperX: 3, LowerY: -2, UpperY: 4}
	lon := dense2(3,
		0.5, 1.5,
		0.5, 1.5,
		0.5, 1.5)
	lat := dense2(3,
		0.5, 0.5,
		1.5, 1.5,
		2.5, 2.5)
	lonV, latV := CentroidsToQuadrilateralsMesh(lon, lat, BoundsForced, b)
	n, m := latV.GetShape()[0], lonV.GetShape()[1]
	for i := 0; i < n; i++ {
		if lonV.Get(i, 0) != -1 || lonV.Get(i, m-1) != 3 {
			t.Errorf("row %d x borders: %v %v", i, lonV.Get(i, 0), lonV.Get(i, m-1))
		}
	}
	for j := 0; j < m; j++ {
		if latV.Get(0, j) != -2 || latV.Get(n-1, j) != 4 {
			t.Errorf("col %d y borders: %v %v", j, latV.Get(0, j), latV.Get(n-1, j))
		}
	}

	// The border assignment is positional: a mesh stored north-to-south
	// (first row holds the maximum latitude) still gets LowerY written
	// into row 0. See the TODO on CentroidsToQuadrilateralsMesh.
	latFlipped := dense2(3,
		2.5, 2.5,
		1.5, 1.5,
		0.5, 0.5)
	_, latV = CentroidsToQuadrilateralsMesh(lon, latFlipped, BoundsForced, b)
	if latV.Get(0, 0) != -2 || latV.Get(n-1, 0) != 4 {
		t.Errorf("flipped mesh y borders: %v %v", latV.Get(0, 0), latV.Get(n-1, 0))
	}
}
