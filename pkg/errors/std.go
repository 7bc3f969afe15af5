package errors

import stderrors "errors"

// Is and As forward to the standard library so callers that import this
// package under the name "errors" keep the usual helpers.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }
