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

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// A Slice is a half-open index range [Start, Stop).
type Slice struct {
	Start, Stop int
}

// Len returns the number of indices in the range.
func (s Slice) Len() int { return s.Stop - s.Start }

// A Subdomain is the minimal set of grid cells covering or touching a
// query polygon. For list-of-points grids, Points holds the indices of the
// points inside the polygon. For rectilinear grids, X is the cell range
// along the longitude axis and Y along the latitude axis. For irregular
// grids, Y is the range along the first array dimension and X along the
// second.
type Subdomain struct {
	Type   GridType
	Points []int
	X, Y   Slice
}

// SubdomainIndices finds the smallest contiguous cell index ranges (or,
// for point lists, the index set) covering the query polygon. Centroid and
// bounds topologies are converted to vertices first. A polygon entirely
// outside the grid causes a GeogridError.
func (g *Grid) SubdomainIndices(poly geom.Polygonal) (*Subdomain, error) {
	switch g.Type {
	case ListOfPoints:
		return g.subdomainPoints(poly)
	case RectilinearCentroids, RectilinearBounds, RectilinearVertices:
		lonV, latV, err := g.rectilinearVertices()
		if err != nil {
			return nil, err
		}
		return subdomainRectilinear(g.Type, lonV, latV, poly)
	case IrregularCentroids, IrregularVertices:
		lonV, latV, err := g.irregularVertices()
		if err != nil {
			return nil, err
		}
		return subdomainIrregular(g.Type, lonV, latV, poly)
	default:
		return nil, GeogridError(fmt.Sprintf(
			"geogrid: cannot subset unrecognized grid type %d", int(g.Type)))
	}
}

// rectilinearVertices returns the 1-d vertex arrays for any rectilinear
// topology.
func (g *Grid) rectilinearVertices() (lonV, latV []float64, err error) {
	switch g.Type {
	case RectilinearCentroids:
		lonV, latV = RectilinearCentroidsToVertices(
			g.Lon.Elements, g.Lat.Elements, BoundsNone, MeshBounds{})
		return lonV, latV, nil
	case RectilinearBounds:
		return Rectilinear2DBoundsToVertices(g.Lon, g.Lat)
	case RectilinearVertices:
		return g.Lon.Elements, g.Lat.Elements, nil
	default:
		return nil, nil, GeogridError(fmt.Sprintf(
			"geogrid: %s is not a rectilinear grid", g.Type))
	}
}

// irregularVertices returns the 2-d vertex arrays for either irregular
// topology.
func (g *Grid) irregularVertices() (lonV, latV *sparse.DenseArray, err error) {
	switch g.Type {
	case IrregularCentroids:
		lonV, latV = CentroidsToQuadrilateralsMesh(g.Lon, g.Lat, BoundsNone, MeshBounds{})
		return lonV, latV, nil
	case IrregularVertices:
		return g.Lon, g.Lat, nil
	default:
		return nil, nil, GeogridError(fmt.Sprintf(
			"geogrid: %s is not an irregular grid", g.Type))
	}
}

func (g *Grid) subdomainPoints(poly geom.Polygonal) (*Subdomain, error) {
	sub := &Subdomain{Type: g.Type}
	for i := range g.Lon.Elements {
		pt := geom.Point{X: g.Lon.Elements[i], Y: g.Lat.Elements[i]}
		if in := pt.Within(poly); in == geom.Inside || in == geom.OnEdge {
			sub.Points = append(sub.Points, i)
		}
	}
	if len(sub.Points) == 0 {
		return nil, GeogridError("geogrid: no points within polygon")
	}
	return sub, nil
}

func subdomainRectilinear(t GridType, lonV, latV []float64, poly geom.Polygonal) (*Subdomain, error) {
	b := poly.Bounds()
	x, err := axisCellRange(lonV, b.Min.X, b.Max.X)
	if err != nil {
		return nil, err
	}
	y, err := axisCellRange(latV, b.Min.Y, b.Max.Y)
	if err != nil {
		return nil, err
	}
	return &Subdomain{Type: t, X: x, Y: y}, nil
}

// axisCellRange clips the bounding-box interval [lo, hi] to one axis of a
// rectilinear vertex array and returns the covering cell range. When the
// interval is narrower than one cell the two vertices straddling it define
// a single-cell range. An interval entirely off the end of the axis causes
// a GeogridError.
func axisCellRange(v []float64, lo, hi float64) (Slice, error) {
	n := len(v) - 1 // cell count
	ascending := v[n] >= v[0]
	if ascending && (hi < v[0] || lo > v[n]) ||
		!ascending && (hi < v[n] || lo > v[0]) {
		return Slice{}, GeogridError("geogrid: polygon bounding box outside grid bounds")
	}
	// Cell i spans vertices i and i+1. For an ascending axis the first
	// covering cell is the last vertex at or below lo; the last covering
	// cell ends at the first vertex at or above hi. Descending mirrors.
	start, stopVertex := 0, n
	if ascending {
		for i := 0; i <= n; i++ {
			if v[i] <= lo {
				start = i
			} else {
				break
			}
		}
		for i := n; i >= 0; i-- {
			if v[i] >= hi {
				stopVertex = i
			} else {
				break
			}
		}
	} else {
		for i := 0; i <= n; i++ {
			if v[i] >= hi {
				start = i
			} else {
				break
			}
		}
		for i := n; i >= 0; i-- {
			if v[i] <= lo {
				stopVertex = i
			} else {
				break
			}
		}
	}
	if start > n-1 {
		start = n - 1
	}
	stop := stopVertex
	if stop <= start {
		stop = start + 1
	}
	return Slice{Start: start, Stop: stop}, nil
}

func subdomainIrregular(t GridType, lonV, latV *sparse.DenseArray, poly geom.Polygonal) (*Subdomain, error) {
	b := poly.Bounds()
	shape := lonV.GetShape()
	ni, nj := shape[0]-1, shape[1]-1 // cell counts
	iMin, iMax, jMin, jMax := shape[0], -1, shape[1], -1
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			x, y := lonV.Get(i, j), latV.Get(i, j)
			if x < b.Min.X || x > b.Max.X || y < b.Min.Y || y > b.Max.Y {
				continue
			}
			if i < iMin {
				iMin = i
			}
			if i > iMax {
				iMax = i
			}
			if j < jMin {
				jMin = j
			}
			if j > jMax {
				jMax = j
			}
		}
	}
	var ys, xs Slice
	if iMax < 0 {
		// No vertex falls inside the bounding box: the polygon is either
		// smaller than one cell or outside the grid. Fall back to the
		// nearest centroid and verify a true intersection.
		lonC, latC := QuadrilateralsMeshToCentroids(lonV, latV)
		c := poly.Centroid()
		idx, err := nearestFromIrregularCentroids(lonC, latC, c.X, c.Y, 0)
		if err != nil {
			return nil, err
		}
		cell := quadrilateralCell(lonV, latV, idx.I, idx.J)
		if cell.Intersection(poly).Area() == 0 {
			return nil, GeogridError("geogrid: polygon does not intersect grid")
		}
		ys = Slice{Start: idx.I, Stop: idx.I + 1}
		xs = Slice{Start: idx.J, Stop: idx.J + 1}
	} else {
		// A vertex inside the box touches the cells on either side of it.
		ys = Slice{Start: maxInt(iMin-1, 0), Stop: minInt(iMax, ni-1) + 1}
		xs = Slice{Start: maxInt(jMin-1, 0), Stop: minInt(jMax, nj-1) + 1}
	}
	// Grow each side outward while the adjacent ring of cells still
	// geometrically intersects the polygon; this recovers partially
	// covered border cells that the vertex bounding-box test misses.
	for ys.Start > 0 && rowIntersects(lonV, latV, ys.Start-1, xs, poly) {
		ys.Start--
	}
	for ys.Stop < ni && rowIntersects(lonV, latV, ys.Stop, xs, poly) {
		ys.Stop++
	}
	for xs.Start > 0 && colIntersects(lonV, latV, xs.Start-1, ys, poly) {
		xs.Start--
	}
	for xs.Stop < nj && colIntersects(lonV, latV, xs.Stop, ys, poly) {
		xs.Stop++
	}
	return &Subdomain{Type: t, X: xs, Y: ys}, nil
}

func rowIntersects(lonV, latV *sparse.DenseArray, i int, xs Slice, poly geom.Polygonal) bool {
	for j := xs.Start; j < xs.Stop; j++ {
		if quadrilateralCell(lonV, latV, i, j).Intersection(poly).Area() > 0 {
			return true
		}
	}
	return false
}

func colIntersects(lonV, latV *sparse.DenseArray, j int, ys Slice, poly geom.Polygonal) bool {
	for i := ys.Start; i < ys.Stop; i++ {
		if quadrilateralCell(lonV, latV, i, j).Intersection(poly).Area() > 0 {
			return true
		}
	}
	return false
}

// quadrilateralCell builds the closed polygon of cell (i, j) from its four
// corner vertices.
func quadrilateralCell(lonV, latV *sparse.DenseArray, i, j int) geom.Polygon {
	return geom.Polygon{{
		{X: lonV.Get(i, j), Y: latV.Get(i, j)},
		{X: lonV.Get(i+1, j), Y: latV.Get(i+1, j)},
		{X: lonV.Get(i+1, j+1), Y: latV.Get(i+1, j+1)},
		{X: lonV.Get(i, j+1), Y: latV.Get(i, j+1)},
		{X: lonV.Get(i, j), Y: latV.Get(i, j)},
	}}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
