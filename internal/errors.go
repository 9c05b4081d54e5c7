package internal

import (
	"errors"

	"github.com/davidmdm/x/xerr"
)

// Warning is reported to the user but does not fail the process.
type Warning string

func (warning Warning) Error() string { return string(warning) }

func (Warning) Is(err error) bool {
	_, ok := err.(Warning)
	return ok
}

func IsWarning(err error) bool {
	return errors.Is(err, Warning(""))
}

// CloseError merges the error of a deferred Close into err. When only one of
// them failed it is returned as is, so its message is not decorated.
func CloseError(err, closeErr error) error {
	switch {
	case closeErr == nil:
		return err
	case err == nil:
		return closeErr
	default:
		return xerr.MultiErrOrderedFrom("", err, closeErr)
	}
}
