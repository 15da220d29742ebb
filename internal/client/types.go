// Package client provides the HTTP transport to the vitals and auth
// backends. Types mirror the backend wire format.
package client

import "strconv"

// Vitals is the /process response.
type Vitals struct {
	HeartRate float64 `json:"heartRate"`
	Systolic  float64 `json:"systolic"`
	Diastolic float64 `json:"diastolic"`
	Stress    string  `json:"stress"`
}

// FormatNumber renders a wire number without a trailing ".0" so integral
// values print the way the backend sent them.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ProcessRequest is the optional /process body. The base protocol sends
// an empty body; RawSignal is only set when signal capture is enabled.
type ProcessRequest struct {
	RawSignal []float64 `json:"raw_signal"`
}

// SignupRequest is the /signup body.
type SignupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
	Password string `json:"password"`
}

// LoginRequest is the /login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Status values carried in auth responses.
const (
	StatusSuccess = "success"
	StatusFailed  = "error"
)

// AuthResponse is the /signup and /login response body.
type AuthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	// HTTPStatus is the response code; not part of the body.
	HTTPStatus int `json:"-"`
}

// OK reports a 2xx response whose body says success.
func (r *AuthResponse) OK() bool {
	return r != nil && r.HTTPStatus >= 200 && r.HTTPStatus < 300 && r.Status == StatusSuccess
}
