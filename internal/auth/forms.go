// Package auth implements the submit handlers behind the signup and login
// forms. A handler never returns an error: every failure becomes an Outcome
// with a message the form can display.
package auth

import (
	"context"

	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/logger"
	"github.com/jeevanteja1304/VitalValue/internal/metrics"
)

// Page names a navigation target.
type Page string

const (
	PageLogin   Page = "login"
	PageSignup  Page = "signup"
	PageMonitor Page = "monitor"
)

// User-visible messages.
const (
	MsgSignupFallback = "An error occurred."
	MsgLoginFallback  = "Login failed."
	MsgUnreachable    = "Could not connect to the server."
)

// Outcome is the result of one form submission. Next is set only on success.
type Outcome struct {
	OK      bool
	Message string
	Next    Page
}

// Backend is the subset of the HTTP client the forms need.
type Backend interface {
	Signup(ctx context.Context, r client.SignupRequest) (*client.AuthResponse, error)
	Login(ctx context.Context, r client.LoginRequest) (*client.AuthResponse, error)
}

// Forms submits auth forms to the backend.
type Forms struct {
	backend Backend
	metrics *metrics.Metrics
}

// NewForms creates the handlers. m may be nil.
func NewForms(backend Backend, m *metrics.Metrics) *Forms {
	return &Forms{backend: backend, metrics: m}
}

// SubmitSignup posts the signup form. On success the user is sent to the
// login page.
func (f *Forms) SubmitSignup(ctx context.Context, r client.SignupRequest) Outcome {
	resp, err := f.backend.Signup(ctx, r)
	out := outcome(resp, err, PageLogin, MsgSignupFallback)
	f.record("signup", out, err)
	return out
}

// SubmitLogin posts the login form. On success the user is sent to the
// monitor page.
func (f *Forms) SubmitLogin(ctx context.Context, r client.LoginRequest) Outcome {
	resp, err := f.backend.Login(ctx, r)
	out := outcome(resp, err, PageMonitor, MsgLoginFallback)
	f.record("login", out, err)
	return out
}

func outcome(resp *client.AuthResponse, err error, next Page, fallback string) Outcome {
	if err != nil {
		return Outcome{Message: MsgUnreachable}
	}
	if resp.OK() {
		return Outcome{OK: true, Message: resp.Message, Next: next}
	}
	if resp.Message != "" {
		return Outcome{Message: resp.Message}
	}
	return Outcome{Message: fallback}
}

func (f *Forms) record(form string, out Outcome, err error) {
	switch {
	case err != nil:
		logger.Warn("auth", "%s request failed: %v", form, err)
	case out.OK:
		logger.Info("auth", "%s successful, redirecting to %s", form, out.Next)
	default:
		logger.Info("auth", "%s rejected: %s", form, out.Message)
	}
	f.metrics.ObserveAuth(form, out.OK)
}
