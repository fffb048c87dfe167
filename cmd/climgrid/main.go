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
along with ClimGrid.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command climgrid is a command-line interface for querying the grids and
// time axes of NetCDF climate data files.
package main

import (
	"fmt"
	"os"

	"github.com/spatialclim/climgrid/climgridutil"
)

func main() {
	if err := climgridutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
