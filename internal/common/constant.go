package common

// CSRFTokenHeaderName is the HTTP header that carries the CSRF token on
// state-changing requests to the sync endpoint.
const CSRFTokenHeaderName = "X-CSRFToken"

// Metadata keys persisted in the local key/value collection.
const (
	MetaKeyDeviceID          = "device_id"
	MetaKeySnapshotGenerated = "catalog_generated_at"
)
