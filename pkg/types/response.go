package types

// Every endpoint answers with exactly one of these envelopes: data on
// success, a coded error otherwise. Batch operations put their per-line
// errors inside Data, not here; this envelope is for call-level failures.

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
