/*
 * errors.go, part of gomembrane.
 *
 * Copyright 2026 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

package membrane

import (
	"fmt"
	"strings"
)

//ConfigError reports invalid parameters, selections that match nothing or
//cutoffs incompatible with the box. It is always critical.
type ConfigError struct {
	message string
	deco    []string
}

//NewConfigError returns a ConfigError with a formatted message.
func NewConfigError(format string, a ...interface{}) *ConfigError {
	return &ConfigError{message: fmt.Sprintf(format, a...)}
}

func (err *ConfigError) Error() string {
	return "gomembrane: configuration error: " + err.message
}

//Decorate adds dec to the decoration slice and returns it.
func (err *ConfigError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns true.
func (err *ConfigError) Critical() bool { return true }

//GeometryError reports a lipid whose director can't be determined in a frame.
//The sample is excluded from the statistics.
type GeometryError struct {
	Frame   int
	Residue int
	message string
	deco    []string
}

//NewGeometryError returns a GeometryError for the residue res in the frame frame.
func NewGeometryError(frame, res int, format string, a ...interface{}) *GeometryError {
	return &GeometryError{Frame: frame, Residue: res, message: fmt.Sprintf(format, a...)}
}

func (err *GeometryError) Error() string {
	return fmt.Sprintf("gomembrane: frame %d residue %d: %s", err.Frame, err.Residue, err.message)
}

//Decorate adds dec to the decoration slice and returns it.
func (err *GeometryError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns false, degenerate geometries are only counted.
func (err *GeometryError) Critical() bool { return false }

//FitError is returned when a distribution can't be fitted. The histogram
//is still kept in the report.
type FitError struct {
	Type    string //the lipid type or pair key.
	message string
	deco    []string
}

//NewFitError returns a FitError for the type or pair key typ.
func NewFitError(typ string, format string, a ...interface{}) *FitError {
	return &FitError{Type: typ, message: fmt.Sprintf(format, a...)}
}

func (err *FitError) Error() string {
	return fmt.Sprintf("gomembrane: fit for %s failed: %s", err.Type, err.message)
}

//Decorate adds dec to the decoration slice and returns it.
func (err *FitError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *FitError) Critical() bool { return false }

//Kinds of data gaps.
const (
	GapEmptyDensity = "empty density"
	GapBox          = "box"
	GapRead         = "read"
	GapInterface    = "no interface"
)

//DataGapError means that a frame could not be processed and was skipped.
type DataGapError struct {
	Frame   int
	Kind    string
	message string
	deco    []string
}

//NewDataGapError returns a DataGapError of the given kind for the frame frame.
func NewDataGapError(frame int, kind, format string, a ...interface{}) *DataGapError {
	return &DataGapError{Frame: frame, Kind: kind, message: fmt.Sprintf(format, a...)}
}

func (err *DataGapError) Error() string {
	return fmt.Sprintf("gomembrane: frame %d skipped (%s): %s", err.Frame, err.Kind, err.message)
}

//Decorate adds dec to the decoration slice and returns it.
func (err *DataGapError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *DataGapError) Critical() bool { return false }

//ErrDecorate decorates err with the caller's name, if err implements Error,
//and returns it. Other errors are returned unchanged.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
	}
	return err
}

//Trace returns the decorations of err, joined by " <- ", or an empty string
//if err doesn't implement Error.
func Trace(err error) string {
	if e, ok := err.(Error); ok {
		return strings.Join(e.Decorate(""), " <- ")
	}
	return ""
}

//IsCritical returns false only for errors that implement Error and are not critical.
func IsCritical(err error) bool {
	if e, ok := err.(Error); ok {
		return e.Critical()
	}
	return err != nil
}
