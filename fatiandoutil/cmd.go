/*
Copyright © 2017 the Fatiando authors.
This file is part of Fatiando.

Fatiando is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Fatiando is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Fatiando.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package fatiandoutil holds the commands of the fatiando
// command-line tool.
package fatiandoutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/cenkalti/backoff"
	"github.com/leouieda/fatiando"
	"github.com/leouieda/fatiando/crust2"
	"github.com/leouieda/fatiando/gridder"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to Fatiando.
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
			name: "ModelArchive",
			usage: `
              ModelArchive is the location of the CRUST2.0 model archive
              (crust2.tar.gz). For the convert command it can be a local path,
              an http:// or https:// address, or a blob storage location
              (gs://, s3://, or file://); remote archives are downloaded to a
              temporary directory before use. The fetch command saves its
              download here, so for fetch it must be a local path.`,
			defaultVal: "crust2.tar.gz",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), convertCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location.
              The converted model is written as a shapefile unless the file
              name ends in .csv, in which case it is written as a csv table.`,
			defaultVal: "crust2_model.shp",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be output.
              Each output variable is defined by an expression that can utilize
              the variables w, e, s, n, top, bottom, density, vp, and vs, and
              the functions exp and poisson.`,
			defaultVal: map[string]string{"density": "density", "vp": "vp", "vs": "vs"},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "GridFile",
			usage: `
              GridFile is the location of a Surfer grid file. It can be a local
              path, an http:// or https:// address, or a blob storage location
              (gs://, s3://, or file://).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{grdinfoCmd.Flags(), grd2xyzCmd.Flags()},
		},
		{
			name: "GridFormat",
			usage: `
              GridFormat is the layout of the grid file: ascii for Surfer
              text grids or binary for Surfer 6 binary grids.`,
			defaultVal: "ascii",
			flagsets:   []*pflag.FlagSet{grdinfoCmd.Flags(), grd2xyzCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FATIANDO")

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
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
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
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
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
	Root.AddCommand(fetchCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(grdinfoCmd)
	Root.AddCommand(grd2xyzCmd)
}

// outChan returns a channel logging to the standard logger.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			logrus.Info(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("fatiando: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "fatiando",
	Short: "A geophysics toolkit.",
	Long: `Fatiando is a toolkit for modeling and inversion in geophysics. This
command provides its input/output utilities: downloading and converting the
CRUST2.0 global crustal model and working with Surfer grid files.
Additional information is available at http://fatiando.org.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'FATIANDO_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Fatiando.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Fatiando v%s\n", fatiando.Version)
	},
	DisableAutoGenTag: true,
}

// fetchCmd is a command that downloads the CRUST2.0 model archive.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the CRUST2.0 model archive.",
	Long: `fetch downloads the CRUST2.0 global crustal model archive from
` + crust2.ModelURL + ` and saves it as the
file named by the ModelArchive configuration variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Fetch(os.ExpandEnv(Cfg.GetString("ModelArchive")))
	},
	DisableAutoGenTag: true,
}

// Fetch downloads the CRUST2.0 model archive and saves it as fname,
// retrying with exponential backoff while the download fails.
func Fetch(fname string) error {
	log := logrus.WithFields(logrus.Fields{"url": crust2.ModelURL, "file": fname})
	log.Info("downloading the CRUST2.0 model archive")
	err := backoff.RetryNotify(
		func() error {
			_, err := crust2.Fetch(fname)
			return err
		},
		backoff.NewExponentialBackOff(),
		func(err error, d time.Duration) {
			logrus.Infof("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return fmt.Errorf("fatiando: downloading the model archive: %v", err)
	}
	log.Info("saved the CRUST2.0 model archive")
	return nil
}

// convertCmd is a command that converts the CRUST2.0 model to
// tesseroids.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the CRUST2.0 model to tesseroids.",
	Long: `convert reads the CRUST2.0 model archive named by the ModelArchive
configuration variable, downloading it first if it is a remote location,
and converts the model to tesseroids: one spherical prism per crustal
layer of each 2 by 2 degree cell, carrying the layer's density, vp, and
vs. The result is written to OutputFile with one column per entry in
OutputVariables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		return Convert(
			maybeDownload(context.TODO(), os.ExpandEnv(Cfg.GetString("ModelArchive")), outChan),
			outputFile,
			outputVars,
		)
	},
	DisableAutoGenTag: true,
}

// Convert converts the CRUST2.0 model archive to tesseroids and
// writes them to outputFile with one column per output variable.
func Convert(archive, outputFile string, outputVariables map[string]string) error {
	o, err := NewOutputter(outputFile, outputVariables, nil)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"archive": archive})
	log.Info("converting the CRUST2.0 model to tesseroids")
	model, err := crust2.Tesseroids(archive)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"tesseroids": len(model), "file": outputFile}).
		Info("writing the converted model")
	return o.Output(model)
}

// grdinfoCmd is a command that summarizes a Surfer grid file.
var grdinfoCmd = &cobra.Command{
	Use:   "grdinfo",
	Short: "Summarize a Surfer grid file.",
	Long: `grdinfo reads the Surfer grid file named by the GridFile configuration
variable and prints its shape, coordinate ranges, and summary statistics
of the data values. Blanked cells are left out of the statistics.
GridFormat chooses between the ascii and binary grid layouts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()
		return GrdInfo(
			cmd.OutOrStdout(),
			maybeDownload(context.TODO(), os.ExpandEnv(Cfg.GetString("GridFile")), outChan),
			gridder.Format(Cfg.GetString("GridFormat")),
		)
	},
	DisableAutoGenTag: true,
}

// GrdInfo writes a summary of the named Surfer grid file to w.
func GrdInfo(w io.Writer, fname string, format gridder.Format) error {
	x, y, data, err := gridder.ReadSurfer(fname, format)
	if err != nil {
		return err
	}
	var values []float64
	blanks := 0
	for _, v := range data.Elements {
		if math.IsNaN(v) {
			blanks++
			continue
		}
		values = append(values, v)
	}
	fmt.Fprintf(w, "%s: %s grid\n", fname, format)
	fmt.Fprintf(w, "columns: %d rows: %d\n", data.Shape[1], data.Shape[0])
	fmt.Fprintf(w, "x: %g to %g\n", x[0], x[len(x)-1])
	fmt.Fprintf(w, "y: %g to %g\n", y[0], y[len(y)-1])
	fmt.Fprintf(w, "blank: %d of %d values\n", blanks, len(data.Elements))
	if len(values) == 0 {
		fmt.Fprintln(w, "z: all values are blank")
		return nil
	}
	fmt.Fprintf(w, "z: min %g max %g mean %g stddev %g\n",
		stats.StatsMin(values), stats.StatsMax(values),
		stats.StatsMean(values), stats.StatsSampleStandardDeviation(values))
	return nil
}

// grd2xyzCmd is a command that converts a Surfer grid file to xyz
// rows.
var grd2xyzCmd = &cobra.Command{
	Use:   "grd2xyz",
	Short: "Convert a Surfer grid file to xyz rows.",
	Long: `grd2xyz reads the Surfer grid file named by the GridFile configuration
variable and writes one "x y value" row per grid node to standard
output, in the row order stored in the file. Blanked cells are written
as NaN. GridFormat chooses between the ascii and binary grid layouts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()
		return Grd2XYZ(
			cmd.OutOrStdout(),
			maybeDownload(context.TODO(), os.ExpandEnv(Cfg.GetString("GridFile")), outChan),
			gridder.Format(Cfg.GetString("GridFormat")),
		)
	},
	DisableAutoGenTag: true,
}

// Grd2XYZ writes one "x y value" row per node of the named Surfer
// grid file to w.
func Grd2XYZ(w io.Writer, fname string, format gridder.Format) error {
	x, y, data, err := gridder.ReadSurfer(fname, format)
	if err != nil {
		return err
	}
	for i := 0; i < data.Shape[0]; i++ {
		for j := 0; j < data.Shape[1]; j++ {
			if _, err := fmt.Fprintf(w, "%g %g %g\n", x[j], y[i], data.Get(i, j)); err != nil {
				return err
			}
		}
	}
	return nil
}
