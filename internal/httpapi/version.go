package httpapi

// serviceName identifies this service in health and version reports.
const serviceName = "ttsd"

// Version is the service version reported by GET /version.
// Overridable at build time via -ldflags "-X ttsd/internal/httpapi.Version=...".
var Version = "0.5.0"
