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
	"fmt"

	"github.com/ctessum/sparse"
)

// BoundsOption controls how the border vertices produced by mesh
// extrapolation are adjusted.
type BoundsOption int

const (
	// BoundsNone leaves the extrapolated border vertices as computed.
	BoundsNone BoundsOption = iota
	// BoundsForced hard-sets the border vertices to the caller-supplied
	// bounds.
	BoundsForced
	// BoundsLimit clamps the border vertices to the caller-supplied
	// bounds without moving vertices already inside them.
	BoundsLimit
)

// MeshBounds supplies the per-axis lower and upper limits used with
// BoundsForced and BoundsLimit.
type MeshBounds struct {
	LowerX, UpperX float64
	LowerY, UpperY float64
}

// RectilinearCentroidsToVertices estimates the N+1 cell-corner coordinates
// of a rectilinear grid from its N cell centers. Interior vertices are the
// midpoints of neighboring centroids; the two border vertices on each axis
// come from linear extrapolation, which may return garbage if the mesh is
// far from regular. The axis orientation is auto-detected so bound forcing
// and limiting work for both ascending and descending axes.
func RectilinearCentroidsToVertices(x, y []float64, opt BoundsOption, b MeshBounds) (xOut, yOut []float64) {
	xOut = axisCentroidsToVertices(x)
	yOut = axisCentroidsToVertices(y)
	switch opt {
	case BoundsForced:
		forceAxisBounds(xOut, b.LowerX, b.UpperX)
		forceAxisBounds(yOut, b.LowerY, b.UpperY)
	case BoundsLimit:
		limitAxisBounds(xOut, b.LowerX, b.UpperX)
		limitAxisBounds(yOut, b.LowerY, b.UpperY)
	}
	return xOut, yOut
}

func axisCentroidsToVertices(c []float64) []float64 {
	extended := make([]float64, len(c)+2)
	copy(extended[1:len(extended)-1], c)
	extended[0] = 2*extended[1] - extended[2]
	n := len(extended)
	extended[n-1] = 2*extended[n-2] - extended[n-3]
	v := make([]float64, n-1)
	for i := range v {
		v[i] = (extended[i] + extended[i+1]) / 2
	}
	return v
}

// forceAxisBounds assigns lower and upper to the two ends of v, attaching
// the lower bound to whichever end holds the axis minimum.
func forceAxisBounds(v []float64, lower, upper float64) {
	if minIndex(v) == 0 {
		v[0], v[len(v)-1] = lower, upper
	} else {
		v[0], v[len(v)-1] = upper, lower
	}
}

func limitAxisBounds(v []float64, lower, upper float64) {
	n := len(v)
	if minIndex(v) == 0 {
		if v[0] < lower {
			v[0] = lower
		}
		if v[n-1] > upper {
			v[n-1] = upper
		}
	} else {
		if v[n-1] < lower {
			v[n-1] = lower
		}
		if v[0] > upper {
			v[0] = upper
		}
	}
}

func minIndex(v []float64) int {
	idx := 0
	for i, val := range v {
		if val < v[idx] {
			idx = i
		}
	}
	return idx
}

// RectilinearVerticesToCentroids averages adjacent vertices into cell
// centers, inverting RectilinearCentroidsToVertices (exactly, when no
// bound forcing or limiting moved the border vertices).
func RectilinearVerticesToCentroids(xVertices, yVertices []float64) (x, y []float64) {
	x = make([]float64, len(xVertices)-1)
	for i := range x {
		x[i] = (xVertices[i] + xVertices[i+1]) / 2
	}
	y = make([]float64, len(yVertices)-1)
	for j := range y {
		y[j] = (yVertices[j] + yVertices[j+1]) / 2
	}
	return x, y
}

// Rectilinear2DBoundsToVertices reconstructs the N+1 vertex coordinates of
// a rectilinear grid from CF-convention (N,2) bounds arrays. Contiguity
// (bounds[i][1] == bounds[i+1][0]) is assumed, not verified.
func Rectilinear2DBoundsToVertices(lonBnds, latBnds *sparse.DenseArray) (lonVertices, latVertices []float64, err error) {
	lonVertices, err = boundsToVertices(lonBnds)
	if err != nil {
		return nil, nil, err
	}
	latVertices, err = boundsToVertices(latBnds)
	if err != nil {
		return nil, nil, err
	}
	return lonVertices, latVertices, nil
}

func boundsToVertices(bnds *sparse.DenseArray) ([]float64, error) {
	shape := bnds.GetShape()
	if len(shape) != 2 || shape[1] != 2 {
		return nil, GeogridError(fmt.Sprintf(
			"geogrid: bounds array has shape %v; want (N,2)", shape))
	}
	n := shape[0]
	v := make([]float64, n+1)
	for i := 0; i < n; i++ {
		v[i] = bnds.Get(i, 0)
	}
	v[n] = bnds.Get(n-1, 1)
	return v, nil
}

// CentroidsToQuadrilateralsMesh estimates an (N+1)x(M+1) quadrilateral
// vertex mesh from NxM cell-center arrays of an irregular grid. The
// centroid grid is padded by one ring of linearly extrapolated values
// (corner values extrapolated from the adjacent borders) and every output
// vertex is the average of its four padded neighbors.
//
// Unlike the rectilinear case, bound forcing and limiting are applied to
// fixed border rows and columns without orientation detection.
// TODO: bound assignment is wrong for grids whose first row/column holds
// the maximum coordinate (upside-down grids); detect orientation the way
// forceAxisBounds does.
func CentroidsToQuadrilateralsMesh(x, y *sparse.DenseArray, opt BoundsOption, b MeshBounds) (xOut, yOut *sparse.DenseArray) {
	ex := padCentroids(x)
	ey := padCentroids(y)
	n, m := ex.GetShape()[0]-1, ex.GetShape()[1]-1
	xOut = sparse.ZerosDense(n, m)
	yOut = sparse.ZerosDense(n, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			xOut.Set((ex.Get(i, j)+ex.Get(i+1, j)+ex.Get(i, j+1)+ex.Get(i+1, j+1))/4, i, j)
			yOut.Set((ey.Get(i, j)+ey.Get(i+1, j)+ey.Get(i, j+1)+ey.Get(i+1, j+1))/4, i, j)
		}
	}
	switch opt {
	case BoundsForced:
		for i := 0; i < n; i++ {
			xOut.Set(b.LowerX, i, 0)
			xOut.Set(b.UpperX, i, m-1)
		}
		for j := 0; j < m; j++ {
			yOut.Set(b.LowerY, 0, j)
			yOut.Set(b.UpperY, n-1, j)
		}
	case BoundsLimit:
		for i := 0; i < n; i++ {
			if xOut.Get(i, 0) < b.LowerX {
				xOut.Set(b.LowerX, i, 0)
			}
			if xOut.Get(i, m-1) > b.UpperX {
				xOut.Set(b.UpperX, i, m-1)
			}
		}
		for j := 0; j < m; j++ {
			if yOut.Get(0, j) < b.LowerY {
				yOut.Set(b.LowerY, 0, j)
			}
			if yOut.Get(n-1, j) > b.UpperY {
				yOut.Set(b.UpperY, n-1, j)
			}
		}
	}
	return xOut, yOut
}

// padCentroids extends a 2-d centroid array by one ring: edge rows and
// columns by linear extrapolation, corners from the two adjacent border
// values.
func padCentroids(c *sparse.DenseArray) *sparse.DenseArray {
	shape := c.GetShape()
	n, m := shape[0], shape[1]
	e := sparse.ZerosDense(n+2, m+2)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			e.Set(c.Get(i, j), i+1, j+1)
		}
	}
	for j := 1; j <= m; j++ {
		e.Set(2*e.Get(1, j)-e.Get(2, j), 0, j)
		e.Set(2*e.Get(n, j)-e.Get(n-1, j), n+1, j)
	}
	for i := 1; i <= n; i++ {
		e.Set(2*e.Get(i, 1)-e.Get(i, 2), i, 0)
		e.Set(2*e.Get(i, m)-e.Get(i, m-1), i, m+1)
	}
	e.Set(e.Get(0, 1)-e.Get(1, 1)+e.Get(1, 0), 0, 0)
	e.Set(e.Get(0, m)-e.Get(1, m)+e.Get(1, m+1), 0, m+1)
	e.Set(e.Get(n+1, m)-e.Get(n, m)+e.Get(n, m+1), n+1, m+1)
	e.Set(e.Get(n+1, 1)-e.Get(n, 1)+e.Get(n, 0), n+1, 0)
	return e
}

// QuadrilateralsMeshToCentroids averages each quadrilateral's four corner
// vertices into a cell center; input (N,M) vertices yield (N-1,M-1)
// centroids. Like the rectilinear inverse, border cells do not round-trip
// through CentroidsToQuadrilateralsMesh exactly.
func QuadrilateralsMeshToCentroids(xVertices, yVertices *sparse.DenseArray) (x, y *sparse.DenseArray) {
	shape := xVertices.GetShape()
	n, m := shape[0]-1, shape[1]-1
	x = sparse.ZerosDense(n, m)
	y = sparse.ZerosDense(n, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			x.Set((xVertices.Get(i, j)+xVertices.Get(i+1, j)+
				xVertices.Get(i, j+1)+xVertices.Get(i+1, j+1))/4, i, j)
			y.Set((yVertices.Get(i, j)+yVertices.Get(i+1, j)+
				yVertices.Get(i, j+1)+yVertices.Get(i+1, j+1))/4, i, j)
		}
	}
	return x, y
}
