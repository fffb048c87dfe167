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
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// CellWeights computes the area-overlap weight of each candidate grid cell
// with respect to the query polygon: weight = area(cell ∩ polygon) /
// area(cell), evaluated in an equal-area map projection because lon/lat
// geometry is not metrically accurate. Degenerate intersections (a line or
// a point) contribute zero. The weights are renormalized to sum to 1 over
// the candidate set.
//
// The returned array is shaped like the grid's cell field: (nLat, nLon)
// for rectilinear grids, the coordinate-array cell shape for irregular
// grids; cells outside the candidate subdomain hold zero. Point-list grids
// have no cell geometry and cause a GeogridError.
func (g *Grid) CellWeights(poly geom.Polygonal) (*sparse.DenseArray, *Subdomain, error) {
	sub, err := g.SubdomainIndices(poly)
	if err != nil {
		return nil, nil, err
	}
	ct, err := equalAreaTransform(poly)
	if err != nil {
		return nil, nil, err
	}
	projPoly, err := transformPolygonal(poly, ct)
	if err != nil {
		return nil, nil, err
	}

	var weights *sparse.DenseArray
	switch g.Type {
	case RectilinearCentroids, RectilinearBounds, RectilinearVertices:
		lonV, latV, err := g.rectilinearVertices()
		if err != nil {
			return nil, nil, err
		}
		weights = sparse.ZerosDense(len(latV)-1, len(lonV)-1)
		for j := sub.Y.Start; j < sub.Y.Stop; j++ {
			for i := sub.X.Start; i < sub.X.Stop; i++ {
				cell := geom.Polygon{{
					{X: lonV[i], Y: latV[j]},
					{X: lonV[i+1], Y: latV[j]},
					{X: lonV[i+1], Y: latV[j+1]},
					{X: lonV[i], Y: latV[j+1]},
					{X: lonV[i], Y: latV[j]},
				}}
				w, err := cellWeight(cell, projPoly, ct)
				if err != nil {
					return nil, nil, err
				}
				weights.Set(w, j, i)
			}
		}
	case IrregularCentroids, IrregularVertices:
		lonV, latV, err := g.irregularVertices()
		if err != nil {
			return nil, nil, err
		}
		shape := lonV.GetShape()
		weights = sparse.ZerosDense(shape[0]-1, shape[1]-1)
		for i := sub.Y.Start; i < sub.Y.Stop; i++ {
			for j := sub.X.Start; j < sub.X.Stop; j++ {
				w, err := cellWeight(quadrilateralCell(lonV, latV, i, j), projPoly, ct)
				if err != nil {
					return nil, nil, err
				}
				weights.Set(w, i, j)
			}
		}
	case ListOfPoints:
		return nil, nil, GeogridError(
			"geogrid: point lists have no cell geometry to weight")
	default:
		return nil, nil, GeogridError(fmt.Sprintf(
			"geogrid: cannot weight unrecognized grid type %d", int(g.Type)))
	}

	sum := floats.Sum(weights.Elements)
	if sum == 0 {
		return nil, nil, GeogridError("geogrid: polygon does not overlap any grid cell")
	}
	weights.Scale(1 / sum)
	return weights, sub, nil
}

// cellWeight computes the fractional overlap of one lon/lat cell with the
// already-projected query polygon.
func cellWeight(cell geom.Polygon, projPoly geom.Polygonal, ct proj.Transformer) (float64, error) {
	projCell, err := transformPolygonal(cell, ct)
	if err != nil {
		return 0, err
	}
	cellArea := projCell.Area()
	if cellArea == 0 {
		return 0, nil
	}
	return projCell.Intersection(projPoly).Area() / cellArea, nil
}

// SpatialWeightedAverage reduces a field to its polygon-weighted average.
// spatialAxes names the two field axes that correspond to the weight
// grid's dimensions, in order (for rectilinear grids: the latitude axis
// then the longitude axis). The weights are tiled across the remaining
// axes and the spatial axes are summed out, producing one value per
// non-spatial coordinate; a field with no extra axes reduces to a
// single-element array. The weight grid is returned alongside the reduced
// field.
func (g *Grid) SpatialWeightedAverage(field *sparse.DenseArray, spatialAxes [2]int, poly geom.Polygonal) (*sparse.DenseArray, *sparse.DenseArray, error) {
	weights, _, err := g.CellWeights(poly)
	if err != nil {
		return nil, nil, err
	}
	shape := field.GetShape()
	wShape := weights.GetShape()
	for k, ax := range spatialAxes {
		if ax < 0 || ax >= len(shape) {
			return nil, nil, GeogridError(fmt.Sprintf(
				"geogrid: spatial axis %d out of range for field shape %v", ax, shape))
		}
		if shape[ax] != wShape[k] {
			return nil, nil, GeogridError(fmt.Sprintf(
				"geogrid: field axis %d has length %d; weight grid wants %d",
				ax, shape[ax], wShape[k]))
		}
	}

	var restShape []int
	for ax, n := range shape {
		if ax != spatialAxes[0] && ax != spatialAxes[1] {
			restShape = append(restShape, n)
		}
	}
	scalar := len(restShape) == 0
	var out *sparse.DenseArray
	if scalar {
		out = sparse.ZerosDense(1)
	} else {
		out = sparse.ZerosDense(restShape...)
	}

	restIdx := make([]int, len(restShape))
	for flat, v := range field.Elements {
		idx := field.IndexNd(flat)
		w := weights.Get(idx[spatialAxes[0]], idx[spatialAxes[1]])
		if w == 0 {
			continue
		}
		if scalar {
			out.AddVal(v*w, 0)
			continue
		}
		restIdx = restIdx[:0]
		for ax, i := range idx {
			if ax != spatialAxes[0] && ax != spatialAxes[1] {
				restIdx = append(restIdx, i)
			}
		}
		out.AddVal(v*w, restIdx...)
	}
	return out, weights, nil
}

// equalAreaTransform builds a longlat-to-Albers-equal-area transform
// centered on the query polygon, with standard parallels inset by 1/6 of
// its latitude range.
func equalAreaTransform(poly geom.Polygonal) (proj.Transformer, error) {
	b := poly.Bounds()
	c := poly.Centroid()
	latRange := b.Max.Y - b.Min.Y
	lonlat, err := proj.Parse("+proj=longlat +units=degrees")
	if err != nil {
		return nil, fmt.Errorf("geogrid: parsing longlat projection: %v", err)
	}
	aea, err := proj.Parse(fmt.Sprintf(
		"+proj=aea +lat_1=%f +lat_2=%f +lat_0=%f +lon_0=%f "+
			"+x_0=0 +y_0=0 +a=6370997.000000 +b=6370997.000000 +to_meter=1",
		b.Min.Y+latRange/6, b.Max.Y-latRange/6, c.Y, c.X))
	if err != nil {
		return nil, fmt.Errorf("geogrid: parsing equal-area projection: %v", err)
	}
	return lonlat.NewTransform(aea)
}

func transformPolygonal(p geom.Polygonal, ct proj.Transformer) (geom.Polygonal, error) {
	o, err := p.Transform(ct)
	if err != nil {
		return nil, err
	}
	return o.(geom.Polygonal), nil
}
