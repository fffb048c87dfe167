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

// Package calendar models the year/month/day subdivision schemes used in
// climate datasets. A calendar is a pair of enumeration functions (the
// cycles of a year, and the days of a cycle) plus an optional leap-year
// predicate; this covers the Gregorian, Julian and proleptic Gregorian
// calendars as well as the fixed 360/365/366-day model calendars of the
// CF conventions and degenerate calendars with no sub-year structure.
package calendar

import "fmt"

// CalendarError is returned for unknown calendar aliases and for leap-year
// queries on calendars that have no leap-year concept.
type CalendarError string

func (e CalendarError) Error() string { return string(e) }

// A Calendar describes the relation between years, the cycles that divide
// them (months, seasons, or a single dummy cycle), and days. The alias is
// the sole identity key: two calendars with equal aliases are considered
// equal regardless of their functions. Calendars are immutable; use the
// built-in package variables or FromAlias.
type Calendar struct {
	alias        string
	cyclesInYear func(year int) []int
	daysInCycle  func(cycle, year int) []int
	fnIsLeap     func(year int, c *Calendar) bool
}

func (c *Calendar) String() string { return c.alias }

// Alias returns the calendar's identifying name.
func (c *Calendar) Alias() string { return c.alias }

// Equal reports whether c and o are the same calendar, comparing by alias
// only.
func (c *Calendar) Equal(o *Calendar) bool { return c.alias == o.alias }

// CyclesInYear enumerates the cycles of the given year, in order.
func (c *Calendar) CyclesInYear(year int) []int { return c.cyclesInYear(year) }

// DaysInCycle enumerates the days of the given cycle of the given year, in
// order. The values are day labels, not positions: for October 1582 in the
// Gregorian calendar they run 1-4, 15-31.
func (c *Calendar) DaysInCycle(cycle, year int) []int {
	return c.daysInCycle(cycle, year)
}

// IsLeap reports whether year is a leap year. It returns a CalendarError
// for calendars without a leap-year concept.
func (c *Calendar) IsLeap(year int) (bool, error) {
	if c.fnIsLeap == nil {
		return false, CalendarError(fmt.Sprintf(
			"calendar: leap year concept not defined for '%s' calendar", c.alias))
	}
	return c.fnIsLeap(year, c), nil
}

// CountCyclesInYear returns the number of cycles in the given year.
func (c *Calendar) CountCyclesInYear(year int) int {
	return len(c.cyclesInYear(year))
}

// CountDaysInCycle returns the number of days in the given cycle of the
// given year.
func (c *Calendar) CountDaysInCycle(cycle, year int) int {
	return len(c.daysInCycle(cycle, year))
}

// CountDaysInYear returns the number of days in the given year, summed over
// all of its cycles.
func (c *Calendar) CountDaysInYear(year int) int {
	days := 0
	for _, cycle := range c.cyclesInYear(year) {
		days += len(c.daysInCycle(cycle, year))
	}
	return days
}

// monthsOfGregorianYear enumerates the twelve months; the year argument is
// ignored.
func monthsOfGregorianYear(year int) []int { return intRange(1, 13) }

// temperateSeasons enumerates the four temperate seasons.
func temperateSeasons(year int) []int { return intRange(1, 5) }

// yearCycle is a single dummy cycle, for calendars that divide years
// directly into days.
func yearCycle(year int) []int { return []int{0} }

func daysInMonth360(month, year int) []int { return intRange(1, 31) }

var monthLengths365 = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
var monthLengths366 = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysInMonth365(month, year int) []int {
	return intRange(1, monthLengths365[month-1]+1)
}

func daysInMonth366(month, year int) []int {
	return intRange(1, monthLengths366[month-1]+1)
}

// daysInMonthJulian enumerates the days of a Julian-calendar month: a leap
// year every 4 years, with no century exception.
func daysInMonthJulian(month, year int) []int {
	if year%4 == 0 {
		return daysInMonth366(month, year)
	}
	return daysInMonth365(month, year)
}

// daysInMonthProlepticGregorian enumerates the days of a proleptic-Gregorian
// month: a leap year every 4 years, except every 100 years, but still every
// 400 years.
func daysInMonthProlepticGregorian(month, year int) []int {
	if year%100 == 0 && year%400 != 0 {
		return daysInMonth365(month, year)
	}
	return daysInMonthJulian(month, year)
}

// daysInMonthGregorian enumerates the days of a Gregorian-calendar month,
// including the transition from the Julian calendar: October 5 to
// October 14 of 1582 do not exist.
func daysInMonthGregorian(month, year int) []int {
	if year > 1582 || (year == 1582 && month > 10) {
		return daysInMonthProlepticGregorian(month, year)
	} else if year == 1582 && month == 10 {
		return []int{1, 2, 3, 4, 15, 16, 17, 18, 19, 20,
			21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31}
	}
	return daysInMonthJulian(month, year)
}

func daysInYear365(cycle, year int) []int { return intRange(1, 366) }

// dayInYear is a dummy single-day enumeration for calendars that do not
// define how days behave.
func dayInYear(cycle, year int) []int { return []int{1} }

// isLeapFeb29 reports a leap year when the last day enumerated for cycle 2
// (the February equivalent) is the 29th.
func isLeapFeb29(year int, c *Calendar) bool {
	days := c.daysInCycle(2, year)
	return days[len(days)-1] == 29
}

func intRange(lo, hi int) []int {
	r := make([]int, hi-lo)
	for i := range r {
		r[i] = lo + i
	}
	return r
}

// The built-in calendars.
var (
	// Cal360 is the fixed 360-day calendar (twelve 30-day months).
	Cal360 = &Calendar{"360_day", monthsOfGregorianYear, daysInMonth360, isLeapFeb29}
	// Cal365 is the fixed 365-day calendar with no leap years.
	Cal365 = &Calendar{"noleap", monthsOfGregorianYear, daysInMonth365, isLeapFeb29}
	// Cal366 is the fixed 366-day calendar where every year is a leap year.
	Cal366 = &Calendar{"all_leap", monthsOfGregorianYear, daysInMonth366, isLeapFeb29}
	// CalJulian is the Julian calendar.
	CalJulian = &Calendar{"julian", monthsOfGregorianYear, daysInMonthJulian, isLeapFeb29}
	// CalProleptic is the Gregorian calendar extended backward before 1582.
	CalProleptic = &Calendar{"proleptic_gregorian", monthsOfGregorianYear,
		daysInMonthProlepticGregorian, isLeapFeb29}
	// CalGregorian is the Gregorian calendar with the 1582 Julian cutover.
	CalGregorian = &Calendar{"gregorian", monthsOfGregorianYear,
		daysInMonthGregorian, isLeapFeb29}
	// CalYearsOnly divides time into years with a single dummy day each.
	CalYearsOnly = &Calendar{"years_only", yearCycle, dayInYear, isLeapFeb29}
	// CalMonthsOnly divides years into months with a single dummy day each.
	CalMonthsOnly = &Calendar{"months_only", monthsOfGregorianYear, dayInYear, nil}
	// CalSeasons divides years into four seasons with a single dummy day each.
	CalSeasons = &Calendar{"seasons", temperateSeasons, dayInYear, nil}
	// Cal365NoMonths divides years directly into 365 days.
	Cal365NoMonths = &Calendar{"365_days_no_months", yearCycle, daysInYear365, nil}
)

// FromAlias returns the built-in calendar for a CF-convention calendar
// name. It returns a CalendarError for unknown aliases.
func FromAlias(alias string) (*Calendar, error) {
	switch alias {
	case "360_day":
		return Cal360, nil
	case "noleap", "365_day":
		return Cal365, nil
	case "all_leap", "366_day":
		return Cal366, nil
	case "julian":
		return CalJulian, nil
	case "proleptic_gregorian":
		return CalProleptic, nil
	case "gregorian", "standard":
		return CalGregorian, nil
	case "years_only":
		return CalYearsOnly, nil
	case "months_only":
		return CalMonthsOnly, nil
	case "seasons":
		return CalSeasons, nil
	case "365_days_no_months":
		return Cal365NoMonths, nil
	}
	return nil, CalendarError(fmt.Sprintf("calendar: unknown calendar: %s", alias))
}
