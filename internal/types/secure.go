package types

// SecretString holds a sensitive value (the sensor hub bearer token) and
// redacts itself under fmt and JSON serialization so the secret cannot leak
// through log output or config dumps. Call Unmask only at the point the raw
// value is genuinely needed, e.g. when building an Authorization header.
type SecretString string

const redactedPlaceholder = "***REDACTED***"

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedPlaceholder + `"`), nil
}

// Unmask returns the raw plaintext value of the secret.
func (s SecretString) Unmask() string {
	return string(s)
}
