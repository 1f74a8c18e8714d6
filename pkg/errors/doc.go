// Package errors provides structured, coded errors shared across the
// platform's packages.
//
// Services wrap low-level failures with a stable ErrorCode so API handlers
// can translate them into HTTP responses without inspecting error strings:
//
//	if err != nil {
//		return errors.Wrap(err, errors.ErrCodeStoreUnavailable, "login history unavailable")
//	}
//
// Handlers map codes with MapErrorCodeToHTTPStatus or err.HTTPStatusCode(),
// and can branch on a code with IsCode:
//
//	if errors.IsCode(err, errors.ErrCodeDeviceConflict) {
//		// non-approvable conflict, do not prompt for approval
//	}
package errors
