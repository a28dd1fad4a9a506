// Package errs provides the error types shared by the order service.
//
// Every error type follows the same pattern:
//   - a sentinel error variable (e.g. ErrObjectNotFound) that errors.Is matches
//   - a struct carrying the details (parameter name, offending value, optional cause)
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// The HTTP adapter classifies errors by their sentinel:
//   - ErrValueIsInvalid, ErrValueIsRequired, ErrValueIsOutOfRange -> 400
//   - ErrObjectNotFound -> 404
//   - ErrStatusTransitionIsInvalid, ErrConcurrentModification -> 409
//   - ErrUpstreamServiceUnavailable and anything else -> 500
package errs
