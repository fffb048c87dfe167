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

// Package geogrid implements grid-topology detection and geometric queries
// over the longitude/latitude grids found in climate datasets: conversion
// between centroid and vertex representations, nearest-point location,
// polygon-driven subsetting, and polygon-weighted spatial averaging. It
// handles point lists, rectilinear grids (centroids, CF bounds, or
// vertices) and irregular (curvilinear) grids.
//
// The package performs no file I/O: callers pass in coordinate arrays and
// polygon geometries and receive index/slice structures back.
package geogrid

import (
	"fmt"
	"log"
	"math"

	"github.com/ctessum/sparse"
)

// GeogridError is returned for unclassifiable grids, for nearest-point
// queries with no match within the maximum distance, and for query
// geometries entirely outside the grid bounds.
type GeogridError string

func (e GeogridError) Error() string { return string(e) }

// EarthRadius is the radius of the spherical Earth used for great-circle
// distances, in meters.
const EarthRadius = 6371000.

// GridType identifies the topology of a longitude/latitude coordinate pair.
type GridType int

const (
	// UnknownGrid is the zero value; no valid grid has this type.
	UnknownGrid GridType = iota
	// ListOfPoints is an unordered list of stations: equal-length 1-d
	// longitude and latitude arrays sharing a dimension.
	ListOfPoints
	// RectilinearCentroids is a rectilinear grid given by independent 1-d
	// cell-center arrays.
	RectilinearCentroids
	// RectilinearBounds is a rectilinear grid given by CF-convention
	// (N,2) bounds arrays.
	RectilinearBounds
	// RectilinearVertices is a rectilinear grid given by 1-d cell-corner
	// arrays, one element longer than the cell arrays.
	RectilinearVertices
	// IrregularCentroids is a curvilinear grid given by 2-d cell-center
	// arrays of equal shape.
	IrregularCentroids
	// IrregularVertices is a curvilinear grid given by 2-d cell-corner
	// arrays, one element longer than the cell arrays in each dimension.
	IrregularVertices
)

func (t GridType) String() string {
	switch t {
	case ListOfPoints:
		return "list_of_2d_points"
	case RectilinearCentroids:
		return "rectilinear_2d_centroids"
	case RectilinearBounds:
		return "rectilinear_2d_bounds"
	case RectilinearVertices:
		return "rectilinear_2d_vertices"
	case IrregularCentroids:
		return "irregular_2d_centroids"
	case IrregularVertices:
		return "irregular_2d_vertices"
	default:
		panic(fmt.Sprintf("geogrid: unknown grid type %d", int(t)))
	}
}

// GridTypeFromName returns the GridType for one of the topology tags used
// across the API (e.g. "rectilinear_2d_centroids").
func GridTypeFromName(name string) (GridType, error) {
	for _, t := range []GridType{ListOfPoints, RectilinearCentroids,
		RectilinearBounds, RectilinearVertices, IrregularCentroids,
		IrregularVertices} {
		if t.String() == name {
			return t, nil
		}
	}
	return UnknownGrid, GeogridError(fmt.Sprintf("geogrid: unknown grid type: %s", name))
}

// A Grid couples longitude/latitude coordinate arrays with their detected
// topology. A Grid holds references to the arrays it was created from and
// must not outlive them.
type Grid struct {
	Type GridType

	// Lon and Lat are the coordinate arrays: 1-d for point lists and
	// rectilinear grids (except bounds, which are (N,2)), 2-d for
	// irregular grids.
	Lon, Lat *sparse.DenseArray

	// LonDims and LatDims are the dimension names the arrays were
	// classified with, if any.
	LonDims, LatDims []string
}

// NewGrid classifies the given coordinate arrays (see DetectGrid) and
// returns a Grid handle for running queries against them.
func NewGrid(lon, lat *sparse.DenseArray, lonDims, latDims []string) (*Grid, error) {
	t, err := DetectGrid(lon, lat, lonDims, latDims)
	if err != nil {
		return nil, err
	}
	return &Grid{Type: t, Lon: lon, Lat: lat, LonDims: lonDims, LatDims: latDims}, nil
}

// DetectGrid determines the grid topology from longitude and latitude
// arrays, optionally using their dimension names as hints. Ambiguous cases
// are resolved with a logged warning: 2-d grids with unrecognized dimension
// names are assumed to be irregular centroids, and hint-less 1-d arrays of
// equal length that could be either a point list or a rectilinear grid are
// assumed rectilinear. Empty coordinate arrays and arrays that match no
// topology cause a GeogridError.
func DetectGrid(lon, lat *sparse.DenseArray, lonDims, latDims []string) (GridType, error) {
	if len(lon.Elements) == 0 || len(lat.Elements) == 0 {
		return UnknownGrid, GeogridError("geogrid: empty coordinate array")
	}
	lonShape, latShape := lon.GetShape(), lat.GetShape()
	if len(lonShape) == 2 && len(latShape) == 2 {
		if equalDims(lonDims, []string{"lon", "bnds"}) &&
			equalDims(latDims, []string{"lat", "bnds"}) {
			return RectilinearBounds, nil
		}
		if lonShape[0] == latShape[0] && lonShape[1] == latShape[1] {
			if equalDims(lonDims, []string{"yc", "xc"}) && equalDims(latDims, []string{"yc", "xc"}) {
				return IrregularCentroids, nil
			}
			if equalDims(lonDims, []string{"rlat", "rlon"}) && equalDims(latDims, []string{"rlat", "rlon"}) {
				return IrregularCentroids, nil
			}
			log.Println("geogrid: guessing irregular 2d centroids")
			return IrregularCentroids, nil
		}
	} else if len(lonShape) == 1 && len(latShape) == 1 {
		if lonDims != nil {
			if equalDims(lonDims, latDims) && lonShape[0] == latShape[0] {
				return ListOfPoints, nil
			} else if !equalDims(lonDims, latDims) {
				if isMonotonic(lon.Elements) && isMonotonic(lat.Elements) {
					return RectilinearCentroids, nil
				}
			}
		} else {
			if isMonotonic(lon.Elements) && isMonotonic(lat.Elements) {
				if lonShape[0] == latShape[0] {
					log.Println("geogrid: guessing rectilinear 2d centroids")
				}
				return RectilinearCentroids, nil
			} else if lonShape[0] == latShape[0] {
				return ListOfPoints, nil
			}
		}
	}
	return UnknownGrid, GeogridError("geogrid: unknown grid")
}

// DistanceLonLat returns the great-circle distance in meters between two
// longitude/latitude points on a spherical Earth, using the spherical law
// of cosines. The cosine argument is clamped to [-1, 1] to absorb
// floating-point overshoot for coincident or antipodal points.
func DistanceLonLat(lon1, lat1, lon2, lat2 float64) float64 {
	const degToRad = math.Pi / 180.
	cosArg := math.Sin(lat1*degToRad)*math.Sin(lat2*degToRad) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Cos(lon2*degToRad-lon1*degToRad)
	if cosArg > 1 {
		cosArg = 1
	} else if cosArg < -1 {
		cosArg = -1
	}
	return EarthRadius * math.Acos(cosArg)
}

// equalDims compares dimension-name lists; two nil lists are equal.
func equalDims(a, b []string) bool {
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

// isMonotonic reports whether all consecutive differences share one sign.
// Single-element arrays are considered monotonic.
func isMonotonic(v []float64) bool {
	ascending, descending := true, true
	for i := 1; i < len(v); i++ {
		if v[i]-v[i-1] <= 0 {
			ascending = false
		}
		if v[i]-v[i-1] >= 0 {
			descending = false
		}
	}
	return ascending || descending
}
