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

// Package climgridutil holds the command-line interface for the climgrid
// grid and time-axis query tool.
package climgridutil

import (
	"fmt"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is the ClimGrid version number.
const Version = "1.0.0"

// Cfg holds configuration information.
var Cfg *viper.Viper

var logger *logrus.Logger

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})

	// Options are the configuration options available to ClimGrid.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "files",
			usage: `
              files lists the NetCDF files to query, in time order when the
              query spans a time axis split across files.`,
			shorthand:  "f",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "lonvar",
			usage: `
              lonvar names the longitude coordinate variable.`,
			defaultVal: "lon",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "latvar",
			usage: `
              latvar names the latitude coordinate variable.`,
			defaultVal: "lat",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "timevar",
			usage: `
              timevar names the time coordinate variable.`,
			defaultVal: "time",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "lon",
			usage: `
              lon is the query point longitude in degrees east.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "lat",
			usage: `
              lat is the query point latitude in degrees north.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "maxdist",
			usage: `
              maxdist rejects grid points farther than this many meters from
              the query point. Zero disables the check.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "polygon",
			usage: `
              polygon is the path of a GeoJSON file holding the query polygon
              or multipolygon, in the same longitude convention as the grid.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags(), averageCmd.Flags()},
		},
		{
			name: "bbox",
			usage: `
              bbox is a query rectangle 'lonmin,latmin,lonmax,latmax', used
              when no GeoJSON polygon is given.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags(), averageCmd.Flags()},
		},
		{
			name: "varname",
			usage: `
              varname names the data variable to average.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{averageCmd.Flags()},
		},
		{
			name: "instant",
			usage: `
              instant is an ISO date or datetime (YYYY-MM-DD[THH:MM:SS]; a
              bare date means noon) to locate on the time axis.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{timeindexCmd.Flags()},
		},
		{
			name: "step",
			usage: `
              step is an ordinal time index counted across the given files,
              used when no instant is given.`,
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{timeindexCmd.Flags()},
		},
		{
			name: "threshold",
			usage: `
              threshold rejects time steps farther than this from the query
              instant, in the time units of the first file. Zero disables the
              check.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{timeindexCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CLIMGRID")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(nearestCmd)
	Root.AddCommand(subsetCmd)
	Root.AddCommand(averageCmd)
	Root.AddCommand(timeindexCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("climgrid: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "climgrid",
	Short: "Grid and time-axis queries over NetCDF climate data.",
	Long: `ClimGrid locates points, regions and instants within the
longitude/latitude grids and calendar-aware time axes of NetCDF climate
data files.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'CLIMGRID_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ClimGrid.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ClimGrid v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Locate the grid point nearest to a longitude/latitude.",
	Long: `nearest finds the index of the grid point nearest to the query
point in the first given file, wrapping longitudes across the antimeridian
so grids and query points may use either the [-180,180) or the [0,360)
convention.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := requireFiles()
		if err != nil {
			return err
		}
		return Nearest(cmd.OutOrStdout(), files[0],
			Cfg.GetString("lonvar"), Cfg.GetString("latvar"),
			Cfg.GetFloat64("lon"), Cfg.GetFloat64("lat"),
			Cfg.GetFloat64("maxdist"))
	},
	DisableAutoGenTag: true,
}

var subsetCmd = &cobra.Command{
	Use:   "subset",
	Short: "Find the grid cells covering a polygon.",
	Long: `subset finds the smallest index ranges (or, for station lists, the
index set) of the grid cells of the first given file covering a query
polygon, supplied as GeoJSON or as a bounding box.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := requireFiles()
		if err != nil {
			return err
		}
		poly, err := queryPolygon(Cfg.GetString("polygon"), Cfg.GetString("bbox"))
		if err != nil {
			return err
		}
		return Subset(cmd.OutOrStdout(), files[0],
			Cfg.GetString("lonvar"), Cfg.GetString("latvar"), poly)
	},
	DisableAutoGenTag: true,
}

var averageCmd = &cobra.Command{
	Use:   "average",
	Short: "Average a variable over a polygon.",
	Long: `average reduces a data variable to its area-weighted average over
a query polygon, one value per time step, processing the given files in
order. Cell weights are overlap fractions evaluated in an equal-area map
projection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := requireFiles()
		if err != nil {
			return err
		}
		varName := Cfg.GetString("varname")
		if varName == "" {
			return fmt.Errorf("climgrid: the varname option is required")
		}
		poly, err := queryPolygon(Cfg.GetString("polygon"), Cfg.GetString("bbox"))
		if err != nil {
			return err
		}
		return Average(cmd.OutOrStdout(), files, varName,
			Cfg.GetString("lonvar"), Cfg.GetString("latvar"), poly)
	},
	DisableAutoGenTag: true,
}

var timeindexCmd = &cobra.Command{
	Use:   "timeindex",
	Short: "Locate an instant or ordinal step on the time axis.",
	Long: `timeindex locates a time step across the given files, treating
their time axes as one ordered sequence: with the instant option it finds
the nearest step to a date, reconciling differing time units and calendars
between files; with the step option it resolves an ordinal index to a file
and the index within it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := requireFiles()
		if err != nil {
			return err
		}
		instant := Cfg.GetString("instant")
		step := Cfg.GetInt("step")
		switch {
		case instant != "":
			return NearestInstant(cmd.OutOrStdout(), files,
				Cfg.GetString("timevar"), instant, Cfg.GetFloat64("threshold"))
		case step >= 0:
			return OrdinalStep(cmd.OutOrStdout(), files,
				Cfg.GetString("timevar"), step)
		default:
			return fmt.Errorf("climgrid: either the instant or the step option is required")
		}
	},
	DisableAutoGenTag: true,
}

// requireFiles returns the files option, which every query needs.
func requireFiles() ([]string, error) {
	files := Cfg.GetStringSlice("files")
	if len(files) == 0 {
		return nil, fmt.Errorf("climgrid: the files option is required")
	}
	return files, nil
}
