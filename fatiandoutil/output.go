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

package fatiandoutil

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/leouieda/fatiando/mesher"
)

// An Outputter writes a converted model to disk, one record per
// tesseroid, with one column per output variable.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
}

// modelVarNames are the values each tesseroid provides to output
// variable expressions.
var modelVarNames = []string{"w", "e", "s", "n", "top", "bottom", "density", "vp", "vs"}

// NewOutputter initializes a new Outputter holder and adds a set of default
// output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'poisson(vp, vs)' which calculates Poisson's ratio from the
// compressional and shear wave velocities.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("fatiando: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return (float64)(math.Exp(arg[0].(float64))), nil
		},
		"poisson": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("fatiando: got %d arguments for function 'poisson', but needs 2", len(arg))
			}
			vp := arg[0].(float64)
			vs := arg[1].(float64)
			return (float64)((vp*vp - 2*vs*vs) / (2 * (vp*vp - vs*vs))), nil
		},
	}

	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	o := &Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		outputFunctions: defaultOutputFuncs,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
	}

	for name, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("fatiando: output variable %s: %v", name, err)
		}
		o.expressions[name] = expression
		o.modelVariables = append(o.modelVariables, expression.Vars()...)
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	if err := checkModelVars(o.modelVariables...); err != nil {
		return nil, err
	}
	return o, nil
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]string)
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = val
		}
	}
	return result
}

// checkModelVars checks whether the input variables required to
// calculate the requested output variables are available from the
// model elements.
func checkModelVars(g ...string) error {
	mapOutputOps := make(map[string]uint8)
	for _, n := range modelVarNames {
		mapOutputOps[n] = 0
	}
	for _, v := range g {
		if _, ok := mapOutputOps[v]; !ok {
			return fmt.Errorf("fatiando: undefined variable name '%s'", v)
		}
	}
	return nil
}

// checkOutputNames checks (1) if any output variable names exceed 10 characters
// and (2) if any output variable names include characters that are unsupported
// in shapefile field names.
func checkOutputNames(names []string) error {
	for _, key := range names {
		long := len(key) > 10
		noCharError, err := regexp.MatchString("^[A-Za-z]\\w*$", key)
		if err != nil {
			panic(err)
		}
		if long && !noCharError {
			return fmt.Errorf("fatiando: output variable name '%s' exceeds 10 characters and includes unsupported character(s)", key)
		} else if long {
			return fmt.Errorf("fatiando: output variable name '%s' exceeds 10 characters", key)
		} else if !noCharError {
			return fmt.Errorf("fatiando: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// Output writes the model to the output file. Models are written as
// shapefiles with one polygon per tesseroid footprint unless the
// output file name ends in .csv.
func (o *Outputter) Output(model []*mesher.Tesseroid) error {
	vars := make([]string, 0, len(o.outputVariables))
	for v := range o.outputVariables {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	results, err := o.results(vars, model)
	if err != nil {
		return err
	}
	if filepath.Ext(o.fileName) == ".csv" {
		return o.writeCSV(vars, results)
	}
	return o.writeShapefile(vars, results, model)
}

// results evaluates the output variable expressions for each
// tesseroid.
func (o *Outputter) results(vars []string, model []*mesher.Tesseroid) ([][]float64, error) {
	results := make([][]float64, len(model))
	for i, t := range model {
		params := map[string]interface{}{
			"w": t.W, "e": t.E, "s": t.S, "n": t.N,
			"top": t.Top, "bottom": t.Bottom,
		}
		for _, prop := range []string{"density", "vp", "vs"} {
			v, _ := t.GetProp(prop)
			params[prop] = v
		}
		row := make([]float64, len(vars))
		for j, v := range vars {
			result, err := o.expressions[v].Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("fatiando: evaluating output variable %s: %v", v, err)
			}
			val, ok := result.(float64)
			if !ok {
				return nil, fmt.Errorf("fatiando: output variable %s: expected a number, got %#v", v, result)
			}
			row[j] = val
		}
		results[i] = row
	}
	return results, nil
}

func (o *Outputter) writeCSV(vars []string, results [][]float64) error {
	f, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("fatiando: error creating output csv file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(vars); err != nil {
		return fmt.Errorf("fatiando: error writing output csv file: %v", err)
	}
	row := make([]string, len(vars))
	for _, res := range results {
		for j, v := range res {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("fatiando: error writing output csv file: %v", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (o *Outputter) writeShapefile(vars []string, results [][]float64, model []*mesher.Tesseroid) error {
	if err := checkOutputNames(vars); err != nil {
		return err
	}
	// Projection definition. The model is in geographic coordinates
	// on WGS84.
	const proj4 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`

	fields := make([]goshp.Field, len(vars))
	for i, v := range vars {
		fields[i] = goshp.FloatField(v, 14, 8)
	}

	// remove extension and replace it with .shp
	fileBase := strings.TrimSuffix(o.fileName, filepath.Ext(o.fileName))
	fileName := fileBase + ".shp"
	shape, err := shp.NewEncoderFromFields(fileName, goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("fatiando: error creating output shapefile: %v", err)
	}
	for i, t := range model {
		outFields := make([]interface{}, len(vars))
		for j := range vars {
			outFields[j] = results[i][j]
		}
		if err = shape.EncodeFields(t.Polygon(), outFields...); err != nil {
			return fmt.Errorf("fatiando: error writing output shapefile: %v", err)
		}
	}
	shape.Close()

	// Create .prj file
	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("fatiando: error creating output prj file: %v", err)
	}
	fmt.Fprint(f, proj4)
	f.Close()

	return nil
}
