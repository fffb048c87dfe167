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

// Package ncio reads coordinate grids, data fields and time axes from
// NetCDF classic files, feeding the geogrid and nctime query functions.
// NetCDF 4 and greater are not supported.
package ncio

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/spatialclim/climgrid/geogrid"
	"github.com/spatialclim/climgrid/nctime"
)

// DefaultCalendar is assumed for time variables without a calendar
// attribute, per CF conventions.
const DefaultCalendar = "gregorian"

// ReadVar reads a floating point variable into a DenseArray shaped like
// the variable. float32 data are widened and _FillValue entries become
// NaN. Non-floating-point variables are an error.
func ReadVar(nc *cdf.File, v string) (*sparse.DenseArray, error) {
	r := nc.Reader(v, nil, nil)
	dataI := r.Zero(-1)
	if _, err := r.Read(dataI); err != nil {
		return nil, fmt.Errorf("ncio: reading variable %s: %v", v, err)
	}
	var data []float64
	switch d := dataI.(type) {
	case []float64:
		data = d
	case []float32:
		data = make([]float64, len(d))
		for i, val := range d {
			data[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("ncio: variable %s is not floating point (%T)", v, dataI)
	}

	if noDataI := nc.Header.GetAttribute(v, "_FillValue"); noDataI != nil {
		var noData float64
		switch nd := noDataI.(type) {
		case []float32:
			noData = float64(nd[0])
		case []float64:
			noData = nd[0]
		default:
			return nil, fmt.Errorf("ncio: invalid _FillValue type for %s: %T", v, noDataI)
		}
		for i, d := range data {
			if d == noData {
				data[i] = math.NaN()
			}
		}
	}

	out := sparse.ZerosDense(nc.Header.Lengths(v)...)
	copy(out.Elements, data)
	return out, nil
}

// textAttribute fetches a text attribute, reporting whether it exists.
func textAttribute(nc *cdf.File, v, a string) (string, bool) {
	switch s := nc.Header.GetAttribute(v, a).(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

// open opens a NetCDF file for reading. The caller closes the returned
// os.File when done with the cdf.File.
func open(file string) (*os.File, *cdf.File, error) {
	ff, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("ncio: opening %s: %v", file, err)
	}
	nc, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, nil, fmt.Errorf("ncio: opening %s: %v", file, err)
	}
	return ff, nc, nil
}

// ReadGrid reads the named longitude and latitude variables and
// classifies their topology.
func ReadGrid(nc *cdf.File, lonVar, latVar string) (*geogrid.Grid, error) {
	lon, err := ReadVar(nc, lonVar)
	if err != nil {
		return nil, err
	}
	lat, err := ReadVar(nc, latVar)
	if err != nil {
		return nil, err
	}
	return geogrid.NewGrid(lon, lat,
		nc.Header.Dimensions(lonVar), nc.Header.Dimensions(latVar))
}

// OpenGrid reads a coordinate grid from a file.
func OpenGrid(file, lonVar, latVar string) (*geogrid.Grid, error) {
	ff, nc, err := open(file)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	return ReadGrid(nc, lonVar, latVar)
}

// ReadTimeAxis reads the named time variable with its units string and
// calendar. A missing calendar attribute means DefaultCalendar; a missing
// units attribute is an error.
func ReadTimeAxis(nc *cdf.File, timeVar string) (*nctime.TimeAxis, error) {
	vals, err := ReadVar(nc, timeVar)
	if err != nil {
		return nil, err
	}
	units, ok := textAttribute(nc, timeVar, "units")
	if !ok {
		return nil, fmt.Errorf("ncio: time variable %s has no units attribute", timeVar)
	}
	calName, ok := textAttribute(nc, timeVar, "calendar")
	if !ok {
		calName = DefaultCalendar
	}
	cal, err := nctime.GetCalendar(calName)
	if err != nil {
		return nil, err
	}
	return &nctime.TimeAxis{Values: vals.Elements, Units: units, Calendar: cal}, nil
}

// ReadTimeLength returns the number of steps of the named time variable
// without reading its values.
func ReadTimeLength(nc *cdf.File, timeVar string) (int, error) {
	lengths := nc.Header.Lengths(timeVar)
	if len(lengths) != 1 {
		return 0, fmt.Errorf("ncio: time variable %s is not 1-dimensional", timeVar)
	}
	return lengths[0], nil
}

// TimeStartEnd returns the first and last instants of the named time
// variable in a file.
func TimeStartEnd(file, timeVar string) (start, end nctime.DateTime, err error) {
	ff, nc, err := open(file)
	if err != nil {
		return nctime.DateTime{}, nctime.DateTime{}, err
	}
	defer ff.Close()
	axis, err := ReadTimeAxis(nc, timeVar)
	if err != nil {
		return nctime.DateTime{}, nctime.DateTime{}, err
	}
	return axis.StartEnd()
}

// NearestTime locates the time step nearest to an ISO-like instant across
// an ordered sequence of files, returning the file number and the index
// within that file's time axis. threshold, when positive, is the maximum
// acceptable gap in the units of the first file's time axis.
func NearestTime(files []string, timeVar, instant string, threshold float64) (file, index int, err error) {
	axes := make([]*nctime.TimeAxis, len(files))
	for i, name := range files {
		ff, nc, err := open(name)
		if err != nil {
			return 0, 0, err
		}
		axes[i], err = ReadTimeAxis(nc, timeVar)
		ff.Close()
		if err != nil {
			return 0, 0, fmt.Errorf("ncio: %s: %v", name, err)
		}
	}
	return nctime.NearestTimeString(axes, instant, threshold)
}

// TimeIndex locates the ordinal time step t within an ordered sequence of
// files as if their time axes were concatenated, returning the file
// number and the index within that file's time axis. Only the axis
// lengths are read.
func TimeIndex(files []string, timeVar string, t int) (file, index int, err error) {
	lengths := make([]int, len(files))
	for i, name := range files {
		ff, nc, err := open(name)
		if err != nil {
			return 0, 0, err
		}
		lengths[i], err = ReadTimeLength(nc, timeVar)
		ff.Close()
		if err != nil {
			return 0, 0, fmt.Errorf("ncio: %s: %v", name, err)
		}
	}
	return nctime.TimeIndex(lengths, t)
}
