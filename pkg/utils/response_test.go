package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shiprate-backend/internal/domain"

	"github.com/goccy/go-json"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.InvalidInput("weight must be positive"), http.StatusBadRequest, "weight must be positive"},
		{domain.ValidationFailed("bad tier"), http.StatusBadRequest, "bad tier"},
		{fmt.Errorf("lookup: %w", domain.NotFound(domain.ErrServiceNotFound, "42")), http.StatusNotFound, "service not found: 42"},
		{errors.New("connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteDomainError(rec, httptest.NewRequest("GET", "/x", nil), tt.err)
		if rec.Code != tt.status {
			t.Fatalf("%v: status %d, want %d", tt.err, rec.Code, tt.status)
		}
		var body domain.Response
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Success || body.Error != tt.msg {
			t.Fatalf("%v: body %+v, want error %q", tt.err, body, tt.msg)
		}
	}
}

func TestWriteList(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteList(rec, 2, []string{"a", "b"})
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("missing content type")
	}
	want := `{"success":true,"count":2,"data":["a","b"]}` + "\n"
	if rec.Body.String() != want {
		t.Fatalf("body = %q, want %q", rec.Body.String(), want)
	}
}
