package types

// HTTP headers consumed and emitted by the REST surface
const (
	HeaderRequestID = "X-Request-ID"

	// HeaderUserID carries the pre-authenticated acting user resolved by the
	// upstream gateway. This service trusts it and performs no credential
	// checks of its own.
	HeaderUserID = "X-User-ID"
)
