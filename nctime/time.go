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

// Package nctime resolves timestamps to indices within the time axes of
// sequences of climate data files, reconciling the CF-convention calendars
// and time-units strings that may differ from file to file. Conversion
// between a numeric time value and a calendar date is an explicit step
// (DateToNum, NumToDate, Convert) so its cost and failure modes stay
// visible; stdlib time.Time cannot represent the model calendars involved.
package nctime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spatialclim/climgrid/calendar"
)

// A DateTime is an instant in an arbitrary calendar. Month is the calendar
// cycle number and Day the day label within it, so a DateTime is only
// meaningful together with a Calendar.
type DateTime struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// ISO formats the instant as YYYY-MM-DDTHH:MM:SS.
func (dt DateTime) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// ParseDateTime parses an ISO-like instant, YYYY-MM-DD with an optional
// THH:MM:SS part. A date without a time of day means noon, the middle of
// the day. stdlib time parsing is not used because the date may belong to
// a non-Gregorian calendar (e.g. day 30 of February in a 360_day file).
func ParseDateTime(s string) (DateTime, error) {
	dt := DateTime{Hour: 12}
	parts := strings.SplitN(s, "T", 2)
	dateParts := strings.Split(parts[0], "-")
	// A leading minus sign for negative years splits into an empty field.
	if dateParts[0] == "" && len(dateParts) == 4 {
		dateParts = []string{"-" + dateParts[1], dateParts[2], dateParts[3]}
	}
	if len(dateParts) != 3 {
		return DateTime{}, fmt.Errorf("nctime: invalid date: %s", s)
	}
	var err error
	if dt.Year, err = strconv.Atoi(dateParts[0]); err != nil {
		return DateTime{}, fmt.Errorf("nctime: invalid year in date %s: %v", s, err)
	}
	if dt.Month, err = strconv.Atoi(dateParts[1]); err != nil {
		return DateTime{}, fmt.Errorf("nctime: invalid month in date %s: %v", s, err)
	}
	if dt.Day, err = strconv.Atoi(dateParts[2]); err != nil {
		return DateTime{}, fmt.Errorf("nctime: invalid day in date %s: %v", s, err)
	}
	if len(parts) == 2 {
		timeParts := strings.Split(parts[1], ":")
		if len(timeParts) != 3 {
			return DateTime{}, fmt.Errorf("nctime: invalid time of day: %s", s)
		}
		if dt.Hour, err = strconv.Atoi(timeParts[0]); err != nil {
			return DateTime{}, fmt.Errorf("nctime: invalid hour in %s: %v", s, err)
		}
		if dt.Minute, err = strconv.Atoi(timeParts[1]); err != nil {
			return DateTime{}, fmt.Errorf("nctime: invalid minute in %s: %v", s, err)
		}
		if dt.Second, err = strconv.Atoi(timeParts[2]); err != nil {
			return DateTime{}, fmt.Errorf("nctime: invalid second in %s: %v", s, err)
		}
	}
	return dt, nil
}

// Units is a parsed CF time-units string such as
// "days since 1850-01-01 00:00:00".
type Units struct {
	Step  string // days, hours, minutes or seconds
	Epoch DateTime
}

// unitsPerDay gives the number of units in one day for each recognized
// step.
var unitsPerDay = map[string]float64{
	"days":    1,
	"hours":   24,
	"minutes": 1440,
	"seconds": 86400,
}

// ParseUnits parses a CF time-units string: "<step> since <instant>",
// where step is days/hours/minutes/seconds (singular accepted) and the
// instant is ISO-like with the time of day optional (defaulting to
// midnight, not noon: a units epoch "since 1850-01-01" means the start of
// that day).
func ParseUnits(s string) (Units, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 || !strings.EqualFold(fields[1], "since") {
		return Units{}, fmt.Errorf("nctime: invalid time units: %q", s)
	}
	step := strings.ToLower(fields[0])
	if !strings.HasSuffix(step, "s") {
		step += "s"
	}
	if _, ok := unitsPerDay[step]; !ok {
		return Units{}, fmt.Errorf("nctime: unsupported time unit %q in %q", fields[0], s)
	}
	instant := fields[2]
	if len(fields) > 3 {
		instant += "T" + fields[3]
	}
	epoch, err := ParseDateTime(instant)
	if err != nil {
		return Units{}, err
	}
	if !strings.Contains(instant, "T") {
		epoch.Hour = 0 // epoch dates without a time of day start at midnight
	}
	return Units{Step: step, Epoch: epoch}, nil
}

// ordinalDay returns the fractional day count of dt from the start of
// year 0 in the given calendar. Enumerating days through the calendar's
// day lists makes skipped dates (like October 5-14, 1582, in the Gregorian
// calendar) fall out of the arithmetic naturally, and makes nonexistent
// dates an error.
func ordinalDay(cal *calendar.Calendar, dt DateTime) (float64, error) {
	days := 0
	if dt.Year >= 0 {
		for y := 0; y < dt.Year; y++ {
			days += cal.CountDaysInYear(y)
		}
	} else {
		for y := dt.Year; y < 0; y++ {
			days -= cal.CountDaysInYear(y)
		}
	}
	found := false
	for _, cycle := range cal.CyclesInYear(dt.Year) {
		if cycle == dt.Month {
			found = true
			break
		}
		days += cal.CountDaysInCycle(cycle, dt.Year)
	}
	if !found {
		return 0, fmt.Errorf("nctime: cycle %d does not exist in year %d of calendar %s",
			dt.Month, dt.Year, cal)
	}
	dayIndex := -1
	for i, d := range cal.DaysInCycle(dt.Month, dt.Year) {
		if d == dt.Day {
			dayIndex = i
			break
		}
	}
	if dayIndex < 0 {
		return 0, fmt.Errorf("nctime: date %s does not exist in calendar %s", dt.ISO(), cal)
	}
	days += dayIndex
	return float64(days) +
		float64(dt.Hour*3600+dt.Minute*60+dt.Second)/86400, nil
}

// DateToNum converts a calendar date to a numeric time value in the given
// units.
func DateToNum(dt DateTime, u Units, cal *calendar.Calendar) (float64, error) {
	o, err := ordinalDay(cal, dt)
	if err != nil {
		return 0, err
	}
	e, err := ordinalDay(cal, u.Epoch)
	if err != nil {
		return 0, err
	}
	return (o - e) * unitsPerDay[u.Step], nil
}

// NumToDate converts a numeric time value in the given units to a calendar
// date, rounded to the nearest second.
func NumToDate(value float64, u Units, cal *calendar.Calendar) (DateTime, error) {
	e, err := ordinalDay(cal, u.Epoch)
	if err != nil {
		return DateTime{}, err
	}
	totalSeconds := math.Round((e + value/unitsPerDay[u.Step]) * 86400)
	days := int(math.Floor(totalSeconds / 86400))
	secondOfDay := int(totalSeconds - float64(days)*86400)

	year := 0
	if days >= 0 {
		for {
			n := cal.CountDaysInYear(year)
			if days < n {
				break
			}
			days -= n
			year++
		}
	} else {
		for days < 0 {
			year--
			days += cal.CountDaysInYear(year)
		}
	}
	dt := DateTime{Year: year}
	for _, cycle := range cal.CyclesInYear(year) {
		n := cal.CountDaysInCycle(cycle, year)
		if days < n {
			dt.Month = cycle
			dt.Day = cal.DaysInCycle(cycle, year)[days]
			break
		}
		days -= n
	}
	dt.Hour = secondOfDay / 3600
	dt.Minute = secondOfDay % 3600 / 60
	dt.Second = secondOfDay % 60
	return dt, nil
}

// Convert re-expresses numeric time values from one units/calendar pair
// into another by decoding each value to a date in the source calendar and
// re-encoding it in the target. Dates that do not exist in the target
// calendar (e.g. a leap day converted into noleap) are an error.
func Convert(values []float64, fromUnits string, fromCal *calendar.Calendar,
	toUnits string, toCal *calendar.Calendar) ([]float64, error) {
	if fromUnits == toUnits && fromCal.Equal(toCal) {
		out := make([]float64, len(values))
		copy(out, values)
		return out, nil
	}
	from, err := ParseUnits(fromUnits)
	if err != nil {
		return nil, err
	}
	to, err := ParseUnits(toUnits)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		dt, err := NumToDate(v, from, fromCal)
		if err != nil {
			return nil, err
		}
		if out[i], err = DateToNum(dt, to, toCal); err != nil {
			return nil, err
		}
	}
	return out, nil
}
