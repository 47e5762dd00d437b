package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName tags every outbound request with a unique id.
const RequestIDHeaderName = "X-Request-ID"

// Metadata keys persisted in the local key-value table.
const (
	MetadataKeyAuthToken = "auth_token"
	MetadataKeyUserData  = "user_data"
)

// ExportFormatVersion is the static version tag written into local exports.
const ExportFormatVersion = "1.0"
