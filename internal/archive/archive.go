// Package archive stores copies of closed audit reports.
package archive

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get for an unknown report.
	ErrNotFound = errors.New("report not found in archive")
	// ErrInvalidName is returned for names that are not plain file names.
	ErrInvalidName = errors.New("invalid report name")
)

// checkName verifies that name can be used as a file name and object key.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
