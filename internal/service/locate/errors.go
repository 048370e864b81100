// internal/service/locate/errors.go

package locate

import "errors"

// Failure reasons of the resolution chain. Only the live-geolocation
// failures produce a user-visible explanation; reverse-geocode and match
// failures fall silently into the next stage.
var (
	// ErrUnsupported means no live-geolocation capability exists at all.
	ErrUnsupported = errors.New("geolocation unsupported")

	// ErrPermissionDenied means the user refused to share their position.
	ErrPermissionDenied = errors.New("geolocation permission denied")

	// ErrPositionUnavailable means the capability exists but could not
	// produce a position.
	ErrPositionUnavailable = errors.New("position unavailable")

	// ErrTimeout means the position request exceeded its bounded wait.
	ErrTimeout = errors.New("geolocation timed out")

	// ErrNetworkFailure means the reverse-geocode collaborator was
	// unreachable or returned a non-success response.
	ErrNetworkFailure = errors.New("reverse geocode failed")

	// ErrNoMatch means a reverse-geocoded city is absent from the dataset.
	ErrNoMatch = errors.New("city not in dataset")
)

// FailureMessage translates a live-geolocation failure into the explanation
// shown to the user alongside the fallback location. Silent failures return
// an empty string.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnsupported):
		return "Location detection is not supported here. Showing hotlines for a saved or default location."
	case errors.Is(err, ErrPermissionDenied):
		return "Location access was denied. Showing hotlines for a saved or default location."
	case errors.Is(err, ErrPositionUnavailable):
		return "Your location could not be determined. Showing hotlines for a saved or default location."
	case errors.Is(err, ErrTimeout):
		return "Locating you took too long. Showing hotlines for a saved or default location."
	}
	return ""
}
