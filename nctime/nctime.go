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

package nctime

import (
	"fmt"
	"math"

	"github.com/spatialclim/climgrid/calendar"
)

// supportedCalendars maps each CF calendar attribute value this package
// accepts to itself; aliases are resolved by calendar.FromAlias.
var supportedCalendars = map[string]bool{
	"gregorian":           true,
	"standard":            true,
	"proleptic_gregorian": true,
	"noleap":              true,
	"365_day":             true,
	"all_leap":            true,
	"366_day":             true,
	"360_day":             true,
	"julian":              true,
}

// ValidateCalendar checks a CF calendar attribute value. The CF value
// "none" is recognized but deliberately rejected: without a calendar,
// time values cannot be converted between units epochs.
func ValidateCalendar(name string) error {
	if name == "none" {
		return calendar.CalendarError(
			"nctime: CF calendar 'none' is not supported")
	}
	if !supportedCalendars[name] {
		return calendar.CalendarError(
			fmt.Sprintf("nctime: unknown calendar: %s", name))
	}
	return nil
}

// GetCalendar validates a CF calendar attribute value and returns the
// corresponding calendar.
func GetCalendar(name string) (*calendar.Calendar, error) {
	if err := ValidateCalendar(name); err != nil {
		return nil, err
	}
	return calendar.FromAlias(name)
}

// A TimeAxis is the time coordinate of one file: its numeric values plus
// the CF units string and calendar needed to interpret them.
type TimeAxis struct {
	Values   []float64
	Units    string
	Calendar *calendar.Calendar
}

// Len returns the number of time steps on the axis.
func (a *TimeAxis) Len() int { return len(a.Values) }

// ConvertTo returns the axis values re-expressed in the given units and
// calendar.
func (a *TimeAxis) ConvertTo(units string, cal *calendar.Calendar) ([]float64, error) {
	return Convert(a.Values, a.Units, a.Calendar, units, cal)
}

// StartEnd decodes the first and last values of the axis to calendar
// dates.
func (a *TimeAxis) StartEnd() (start, end DateTime, err error) {
	if a.Len() == 0 {
		return DateTime{}, DateTime{}, fmt.Errorf("nctime: empty time axis")
	}
	u, err := ParseUnits(a.Units)
	if err != nil {
		return DateTime{}, DateTime{}, err
	}
	if start, err = NumToDate(a.Values[0], u, a.Calendar); err != nil {
		return DateTime{}, DateTime{}, err
	}
	end, err = NumToDate(a.Values[a.Len()-1], u, a.Calendar)
	return start, end, err
}

// TimeIndex locates the ordinal time step t within a sequence of axis
// lengths, as if the axes were concatenated. It returns the axis number
// and the local index within that axis.
func TimeIndex(lengths []int, t int) (axis, local int, err error) {
	if t < 0 {
		return 0, 0, fmt.Errorf("nctime: negative time index: %d", t)
	}
	remaining := t
	total := 0
	for i, n := range lengths {
		if remaining < n {
			return i, remaining, nil
		}
		remaining -= n
		total += n
	}
	return 0, 0, fmt.Errorf("nctime: time index %d beyond the %d available steps",
		t, total)
}

// NearestTimeValue locates the time step nearest to t across a sequence of
// time axes ordered by time. t is a numeric value in the units and
// calendar of the first axis; axes with different units or calendars are
// converted before comparison. It returns the axis number and the local
// index within that axis.
//
// When t falls between two axes, the candidate is chosen by comparing the
// gap to the previous axis's last value against the gap to the current
// axis's first value, the previous axis winning ties. A positive threshold
// rejects any candidate farther from t than threshold (in the units of the
// first axis); threshold <= 0 disables the check.
func NearestTimeValue(axes []*TimeAxis, t, threshold float64) (axis, local int, err error) {
	if len(axes) == 0 {
		return 0, 0, fmt.Errorf("nctime: no time axes")
	}
	first := axes[0]
	var prevEnd float64
	prevLen := 0
	havePrev := false
	for i, ax := range axes {
		if ax.Len() == 0 {
			return 0, 0, fmt.Errorf("nctime: empty time axis (axis %d)", i)
		}
		vals := ax.Values
		if ax.Units != first.Units || !ax.Calendar.Equal(first.Calendar) {
			if vals, err = ax.ConvertTo(first.Units, first.Calendar); err != nil {
				return 0, 0, err
			}
		}
		start := vals[0]
		end := vals[len(vals)-1]
		switch {
		case t >= start && t <= end:
			tn := 0
			best := math.Abs(vals[0] - t)
			for j := 1; j < len(vals); j++ {
				if d := math.Abs(vals[j] - t); d < best {
					best, tn = d, j
				}
			}
			if threshold > 0 && best > threshold {
				return 0, 0, fmt.Errorf(
					"nctime: no time step within %g of %g (nearest is %g away)",
					threshold, t, best)
			}
			return i, tn, nil
		case t < start:
			if havePrev {
				prevDiff := math.Abs(prevEnd - t)
				nextDiff := start - t
				if prevDiff <= nextDiff {
					if threshold > 0 && prevDiff > threshold {
						return 0, 0, fmt.Errorf(
							"nctime: no time step within %g of %g (nearest is %g away)",
							threshold, t, prevDiff)
					}
					return i - 1, prevLen - 1, nil
				}
				if threshold > 0 && nextDiff > threshold {
					return 0, 0, fmt.Errorf(
						"nctime: no time step within %g of %g (nearest is %g away)",
						threshold, t, nextDiff)
				}
				return i, 0, nil
			}
			if threshold > 0 && start-t > threshold {
				return 0, 0, fmt.Errorf(
					"nctime: no time step within %g of %g (nearest is %g away)",
					threshold, t, start-t)
			}
			return i, 0, nil
		}
		prevEnd = end
		prevLen = ax.Len()
		havePrev = true
	}
	// t is beyond the last axis.
	if threshold > 0 && t-prevEnd > threshold {
		return 0, 0, fmt.Errorf(
			"nctime: no time step within %g of %g (nearest is %g away)",
			threshold, t, t-prevEnd)
	}
	return len(axes) - 1, prevLen - 1, nil
}

// NearestTimeDate locates the time step nearest to a calendar date across
// a sequence of time axes, interpreting the date in the calendar of the
// first axis. threshold, when positive, is in the units of the first axis.
func NearestTimeDate(axes []*TimeAxis, dt DateTime, threshold float64) (axis, local int, err error) {
	if len(axes) == 0 {
		return 0, 0, fmt.Errorf("nctime: no time axes")
	}
	u, err := ParseUnits(axes[0].Units)
	if err != nil {
		return 0, 0, err
	}
	t, err := DateToNum(dt, u, axes[0].Calendar)
	if err != nil {
		return 0, 0, err
	}
	return NearestTimeValue(axes, t, threshold)
}

// NearestTimeString locates the time step nearest to an ISO-like instant
// (YYYY-MM-DD with optional THH:MM:SS; a bare date means noon) across a
// sequence of time axes.
func NearestTimeString(axes []*TimeAxis, instant string, threshold float64) (axis, local int, err error) {
	dt, err := ParseDateTime(instant)
	if err != nil {
		return 0, 0, err
	}
	return NearestTimeDate(axes, dt, threshold)
}
