package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_DeleteIndex(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantNotFnd bool
		wantStatus int
	}{
		{"ok", http.StatusOK, `{"acknowledged":true}`, false, false, 0},
		{"not found", http.StatusNotFound, `{"error":"index_not_found_exception"}`, true, true, 0},
		{"server error", http.StatusInternalServerError, "boom", true, false, 500},
		{"forbidden", http.StatusForbidden, "denied", true, false, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewHTTPClient(time.Second, Credentials{})
			err := c.DeleteIndex(context.Background(), srv.URL+"/", "db.public.t.idx-1")

			if gotMethod != http.MethodDelete {
				t.Errorf("method = %s, want DELETE", gotMethod)
			}
			if gotPath != "/db.public.t.idx-1" {
				t.Errorf("path = %s, want /db.public.t.idx-1", gotPath)
			}
			if tt.wantErr != (err != nil) {
				t.Fatalf("DeleteIndex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantNotFnd && !errors.Is(err, ErrIndexNotFound) {
				t.Errorf("error = %v, want ErrIndexNotFound", err)
			}
			if tt.wantStatus != 0 {
				var remoteErr *Error
				if !errors.As(err, &remoteErr) {
					t.Fatalf("error = %T, want *Error", err)
				}
				if remoteErr.StatusCode != tt.wantStatus || remoteErr.Body != tt.body {
					t.Errorf("Error = %+v", remoteErr)
				}
			}
		})
	}
}

func TestHTTPClient_Auth(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  string
	}{
		{"none", Credentials{}, ""},
		{"api key", Credentials{APIKey: "abc", Username: "ignored"}, "ApiKey abc"},
		{"basic", Credentials{Username: "elastic", Password: "secret"}, "Basic ZWxhc3RpYzpzZWNyZXQ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
			}))
			defer srv.Close()

			c := NewHTTPClient(time.Second, tt.creds)
			if err := c.DeleteIndex(context.Background(), srv.URL, "idx"); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Authorization = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(100*time.Millisecond, Credentials{})
	if err := c.DeleteIndex(context.Background(), url, "idx"); err == nil {
		t.Error("DeleteIndex() on closed server = nil, want error")
	}
}
