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
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/spatialclim/climgrid/geogrid"
	"github.com/spatialclim/climgrid/ncio"
)

// queryPolygon builds the query geometry from either a GeoJSON file path
// or a 'lonmin,latmin,lonmax,latmax' bounding box.
func queryPolygon(geojsonPath, bbox string) (geom.Polygonal, error) {
	switch {
	case geojsonPath != "":
		b, err := ioutil.ReadFile(geojsonPath)
		if err != nil {
			return nil, fmt.Errorf("climgrid: reading polygon file: %v", err)
		}
		g, err := geojson.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("climgrid: decoding polygon file %s: %v", geojsonPath, err)
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("climgrid: %s holds a %T; want a polygon or multipolygon",
				geojsonPath, g)
		}
		return poly, nil
	case bbox != "":
		return parseBBox(bbox)
	default:
		return nil, fmt.Errorf("climgrid: either the polygon or the bbox option is required")
	}
}

// parseBBox parses 'lonmin,latmin,lonmax,latmax' into a rectangle polygon.
func parseBBox(s string) (geom.Polygon, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("climgrid: bbox %q needs 4 comma-separated numbers", s)
	}
	v := make([]float64, 4)
	for i, p := range parts {
		var err error
		if v[i], err = cast.ToFloat64E(strings.TrimSpace(p)); err != nil {
			return nil, fmt.Errorf("climgrid: invalid bbox %q: %v", s, err)
		}
	}
	if v[0] >= v[2] || v[1] >= v[3] {
		return nil, fmt.Errorf("climgrid: bbox %q has empty extent", s)
	}
	return geom.Polygon{{
		{X: v[0], Y: v[1]},
		{X: v[2], Y: v[1]},
		{X: v[2], Y: v[3]},
		{X: v[0], Y: v[3]},
		{X: v[0], Y: v[1]},
	}}, nil
}

// Nearest runs the nearest-point query against one file and prints the
// resulting index.
func Nearest(w io.Writer, file, lonVar, latVar string, lon, lat, maxDist float64) error {
	grid, err := ncio.OpenGrid(file, lonVar, latVar)
	if err != nil {
		return err
	}
	idx, err := grid.FindNearest(lon, lat, maxDist)
	if err != nil {
		return err
	}
	if idx.Ambiguous {
		logger.Warn("more than one nearest point; reporting the first")
	}
	if idx.J < 0 {
		fmt.Fprintf(w, "point %d (%.0f m)\n", idx.I, idx.Distance)
	} else {
		fmt.Fprintf(w, "i %d j %d (%.0f m)\n", idx.I, idx.J, idx.Distance)
	}
	return nil
}

// Subset runs the polygon-covering query against one file and prints the
// resulting index ranges or point indices.
func Subset(w io.Writer, file, lonVar, latVar string, poly geom.Polygonal) error {
	grid, err := ncio.OpenGrid(file, lonVar, latVar)
	if err != nil {
		return err
	}
	sub, err := grid.SubdomainIndices(poly)
	if err != nil {
		return err
	}
	if sub.Type == geogrid.ListOfPoints {
		fmt.Fprintf(w, "points %v\n", sub.Points)
		return nil
	}
	fmt.Fprintf(w, "x %d:%d y %d:%d\n", sub.X.Start, sub.X.Stop, sub.Y.Start, sub.Y.Stop)
	return nil
}

// Average computes the polygon-weighted average of a variable in each
// file and prints one value per time step.
func Average(w io.Writer, files []string, varName, lonVar, latVar string, poly geom.Polygonal) error {
	for _, file := range files {
		ff, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("climgrid: opening %s: %v", file, err)
		}
		nc, err := cdf.Open(ff)
		if err != nil {
			ff.Close()
			return fmt.Errorf("climgrid: opening %s: %v", file, err)
		}
		err = averageFile(w, nc, file, varName, lonVar, latVar, poly)
		ff.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func averageFile(w io.Writer, nc *cdf.File, file, varName, lonVar, latVar string, poly geom.Polygonal) error {
	grid, err := ncio.ReadGrid(nc, lonVar, latVar)
	if err != nil {
		return err
	}
	field, err := ncio.ReadVar(nc, varName)
	if err != nil {
		return err
	}
	axes, err := spatialAxes(nc, varName, lonVar, latVar)
	if err != nil {
		return err
	}
	reduced, _, err := grid.SpatialWeightedAverage(field, axes, poly)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"file":     file,
		"variable": varName,
	}).Info("averaged over polygon")
	for _, v := range reduced.Elements {
		fmt.Fprintf(w, "%g\n", v)
	}
	return nil
}

// spatialAxes locates the latitude and longitude axes of a variable from
// its dimension names: for rectilinear grids the dimensions of the lat
// and lon coordinate variables, for irregular grids the two shared
// dimensions of the coordinate arrays.
func spatialAxes(nc *cdf.File, varName, lonVar, latVar string) ([2]int, error) {
	varDims := nc.Header.Dimensions(varName)
	lonDims := nc.Header.Dimensions(lonVar)
	latDims := nc.Header.Dimensions(latVar)

	var latName, lonName string
	if len(latDims) == 1 && len(lonDims) == 1 {
		latName, lonName = latDims[0], lonDims[0]
	} else if len(lonDims) == 2 && len(latDims) == 2 {
		latName, lonName = lonDims[0], lonDims[1]
	} else {
		return [2]int{}, fmt.Errorf(
			"climgrid: cannot determine the spatial axes of %s", varName)
	}

	axes := [2]int{-1, -1}
	for i, d := range varDims {
		if d == latName {
			axes[0] = i
		}
		if d == lonName {
			axes[1] = i
		}
	}
	if axes[0] < 0 || axes[1] < 0 {
		return [2]int{}, fmt.Errorf(
			"climgrid: variable %s lacks the %s and %s dimensions", varName, latName, lonName)
	}
	return axes, nil
}

// NearestInstant locates the time step nearest to an ISO instant across
// the files and prints the file and index.
func NearestInstant(w io.Writer, files []string, timeVar, instant string, threshold float64) error {
	file, index, err := ncio.NearestTime(files, timeVar, instant, threshold)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "file %s index %d\n", files[file], index)
	return nil
}

// OrdinalStep resolves an ordinal time step counted across the files and
// prints the file and index.
func OrdinalStep(w io.Writer, files []string, timeVar string, step int) error {
	file, index, err := ncio.TimeIndex(files, timeVar, step)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "file %s index %d\n", files[file], index)
	return nil
}
