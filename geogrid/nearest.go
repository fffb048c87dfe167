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
	"log"
	"math"

	"github.com/ctessum/sparse"
)

// A GridIndex locates a grid point returned by FindNearest. For
// list-of-points grids only I is meaningful and J is -1; for rectilinear
// grids I indexes the longitude axis and J the latitude axis; for irregular
// grids I and J index the two array dimensions in storage order.
//
// Ambiguous reports that more than one grid point was equally near; the
// first index in storage order is returned in that case.
type GridIndex struct {
	I, J      int
	Distance  float64 // meters to the returned point
	Ambiguous bool
}

// FindNearest returns the index of the grid point nearest to the query
// longitude/latitude, dispatching on the grid topology. Vertex and bounds
// topologies are first converted to centroids. If maxDistance is positive
// and the nearest point is farther away than that many meters, a
// GeogridError is returned.
func (g *Grid) FindNearest(lon, lat, maxDistance float64) (GridIndex, error) {
	switch g.Type {
	case ListOfPoints:
		return nearestFromPointList(g.Lon.Elements, g.Lat.Elements, lon, lat, maxDistance)
	case RectilinearCentroids:
		return nearestFromRectilinearCentroids(g.Lon.Elements, g.Lat.Elements, lon, lat, maxDistance)
	case RectilinearBounds:
		lonV, latV, err := Rectilinear2DBoundsToVertices(g.Lon, g.Lat)
		if err != nil {
			return GridIndex{}, err
		}
		lonC, latC := RectilinearVerticesToCentroids(lonV, latV)
		return nearestFromRectilinearCentroids(lonC, latC, lon, lat, maxDistance)
	case RectilinearVertices:
		lonC, latC := RectilinearVerticesToCentroids(g.Lon.Elements, g.Lat.Elements)
		return nearestFromRectilinearCentroids(lonC, latC, lon, lat, maxDistance)
	case IrregularCentroids:
		return nearestFromIrregularCentroids(g.Lon, g.Lat, lon, lat, maxDistance)
	case IrregularVertices:
		lonC, latC := QuadrilateralsMeshToCentroids(g.Lon, g.Lat)
		return nearestFromIrregularCentroids(lonC, latC, lon, lat, maxDistance)
	default:
		return GridIndex{}, GeogridError(fmt.Sprintf(
			"geogrid: cannot search unrecognized grid type %d", int(g.Type)))
	}
}

func nearestFromPointList(lons, lats []float64, lon, lat, maxDistance float64) (GridIndex, error) {
	d := make([]float64, len(lons))
	for i := range lons {
		d[i] = DistanceLonLat(lons[i], lats[i], lon, lat)
	}
	i, ambiguous := argminTies(d)
	if ambiguous {
		log.Println("geogrid: more than one nearest point, returning first index")
	}
	if maxDistance > 0 && d[i] > maxDistance {
		return GridIndex{}, GeogridError("geogrid: no points within provided maximum distance")
	}
	return GridIndex{I: i, J: -1, Distance: d[i], Ambiguous: ambiguous}, nil
}

func nearestFromRectilinearCentroids(lons, lats []float64, lon, lat, maxDistance float64) (GridIndex, error) {
	// Longitude distances are computed modulo 360 and reflected when over
	// 180 so the search wraps across the antimeridian.
	dLon := make([]float64, len(lons))
	for i, l := range lons {
		d := math.Mod(math.Abs(l-lon), 360)
		if d > 180 {
			d = math.Abs(d - 360)
		}
		dLon[i] = d
	}
	i, ambiguousLon := argminTies(dLon)
	if ambiguousLon {
		log.Println("geogrid: more than one nearest meridian, returning first index")
	}
	dLat := make([]float64, len(lats))
	for j, l := range lats {
		dLat[j] = math.Abs(l - lat)
	}
	j, ambiguousLat := argminTies(dLat)
	if ambiguousLat {
		log.Println("geogrid: more than one nearest parallel, returning first index")
	}
	dist := DistanceLonLat(lons[i], lats[j], lon, lat)
	if maxDistance > 0 && dist > maxDistance {
		return GridIndex{}, GeogridError("geogrid: no points within provided maximum distance")
	}
	return GridIndex{I: i, J: j, Distance: dist,
		Ambiguous: ambiguousLon || ambiguousLat}, nil
}

func nearestFromIrregularCentroids(lons, lats *sparse.DenseArray, lon, lat, maxDistance float64) (GridIndex, error) {
	d := make([]float64, len(lons.Elements))
	for i := range lons.Elements {
		d[i] = DistanceLonLat(lons.Elements[i], lats.Elements[i], lon, lat)
	}
	flat, ambiguous := argminTies(d)
	if ambiguous {
		log.Println("geogrid: more than one nearest point, returning first index")
	}
	if maxDistance > 0 && d[flat] > maxDistance {
		return GridIndex{}, GeogridError("geogrid: no points within provided maximum distance")
	}
	idx := lons.IndexNd(flat)
	return GridIndex{I: idx[0], J: idx[1], Distance: d[flat], Ambiguous: ambiguous}, nil
}

// argminTies returns the index of the minimum value and whether the exact
// minimum occurs more than once. The first occurrence in storage order
// wins.
func argminTies(d []float64) (idx int, ambiguous bool) {
	min := math.Inf(1)
	for i, v := range d {
		if v < min {
			min = v
			idx = i
		}
	}
	count := 0
	for _, v := range d {
		if v == min {
			count++
		}
	}
	return idx, count > 1
}
