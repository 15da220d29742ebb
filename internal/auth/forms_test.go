package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/config"
	"github.com/jeevanteja1304/VitalValue/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, code int, body string) *client.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return client.NewHTTPClient(config.BackendConfig{
		SignupURL: srv.URL + "/signup",
		LoginURL:  srv.URL + "/login",
		Timeout:   time.Second,
	})
}

func TestSignupSuccessNavigatesToLogin(t *testing.T) {
	f := NewForms(serve(t, 200, `{"status":"success"}`), nil)
	out := f.SubmitSignup(context.Background(), client.SignupRequest{Email: "a@b.c"})

	assert.True(t, out.OK)
	assert.Equal(t, PageLogin, out.Next)
}

func TestSignupErrorShowsServerMessage(t *testing.T) {
	f := NewForms(serve(t, 200, `{"status":"error","message":"Email exists"}`), nil)
	out := f.SubmitSignup(context.Background(), client.SignupRequest{Email: "a@b.c"})

	assert.False(t, out.OK)
	assert.Equal(t, "Email exists", out.Message)
	assert.Equal(t, Page(""), out.Next)
}

func TestOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		body     string
		login    bool
		wantOK   bool
		wantMsg  string
		wantNext Page
	}{
		{"login success", 200, `{"status":"success","message":"Login successful"}`, true, true, "Login successful", PageMonitor},
		{"login rejected 401", 401, `{"status":"error","message":"Invalid email or password"}`, true, false, "Invalid email or password", ""},
		{"login no message", 200, `{"status":"error"}`, true, false, MsgLoginFallback, ""},
		{"signup no message", 400, `{"status":"error"}`, false, false, MsgSignupFallback, ""},
		{"signup success body on 500", 500, `{"status":"success"}`, false, false, MsgSignupFallback, ""},
		{"non-json body", 502, `<html>bad gateway</html>`, true, false, MsgUnreachable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForms(serve(t, tt.code, tt.body), nil)
			var out Outcome
			if tt.login {
				out = f.SubmitLogin(context.Background(), client.LoginRequest{Email: "e", Password: "p"})
			} else {
				out = f.SubmitSignup(context.Background(), client.SignupRequest{})
			}
			assert.Equal(t, tt.wantOK, out.OK)
			assert.Equal(t, tt.wantMsg, out.Message)
			assert.Equal(t, tt.wantNext, out.Next)
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	c := client.NewHTTPClient(config.BackendConfig{LoginURL: "http://127.0.0.1:1/login", Timeout: time.Second})
	out := NewForms(c, nil).SubmitLogin(context.Background(), client.LoginRequest{})
	assert.Equal(t, Outcome{Message: MsgUnreachable}, out)
}

func TestLoginSendsCredentials(t *testing.T) {
	var got client.LoginRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	c := client.NewHTTPClient(config.BackendConfig{LoginURL: srv.URL, Timeout: time.Second})
	NewForms(c, nil).SubmitLogin(context.Background(), client.LoginRequest{Email: "ada@example.com", Password: "pw"})
	assert.Equal(t, client.LoginRequest{Email: "ada@example.com", Password: "pw"}, got)
}

func TestMetricsRecorded(t *testing.T) {
	m := metrics.New()
	f := NewForms(serve(t, 200, `{"status":"success"}`), m)
	f.SubmitLogin(context.Background(), client.LoginRequest{})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthSubmissions.WithLabelValues("login", "success")))
}
