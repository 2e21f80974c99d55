package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ErykVaughn/vector-database/internal/errortypes"
)

func recordHandleError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleError(c, err)
	return w
}

func TestHandleErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation error maps to 400",
			err:        errortypes.ValidationError(errors.New("bad input"), "invalid request"),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeInvalidRequest,
		},
		{
			name:       "database error maps to 500",
			err:        errortypes.DatabaseError(errors.New("connection refused"), "insert failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternalError,
		},
		{
			name:       "network error maps to 502",
			err:        errortypes.NetworkError(errors.New("timeout"), "upstream unreachable"),
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrorCodeBadGateway,
		},
		{
			name:       "api error maps to 502",
			err:        errortypes.APIError(errors.New("rate limited"), "embedding request failed"),
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrorCodeBadGateway,
		},
		{
			name:       "config error maps to 500",
			err:        errortypes.ConfigError(errors.New("bad dim"), "schema mismatch"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternalError,
		},
		{
			name:       "plain error maps to 500",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := recordHandleError(t, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Status != "error" {
				t.Errorf("response status = %q, want error", resp.Status)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("response code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Details["error"] == nil {
				t.Error("response details missing underlying error")
			}
		})
	}
}

func TestHandleErrorCarriesAppErrorContext(t *testing.T) {
	appErr := errortypes.DatabaseError(errors.New("connection refused"), "insert failed").
		WithField("collection", "people")

	w := recordHandleError(t, appErr)

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Details["collection"] != "people" {
		t.Errorf("details = %v, want collection field carried through", resp.Details)
	}
	if resp.Details["error"] == nil {
		t.Error("details missing underlying error")
	}
	if resp.StackTrace == "" {
		t.Error("stack trace should be carried through")
	}
}

func TestErrorToResponse(t *testing.T) {
	appErr := errortypes.ValidationError(errors.New("bad input"), "invalid request").
		WithField("field", "Name")

	resp := errorToResponse(appErr)

	if resp.Code != StatusCodeValidationError {
		t.Errorf("code = %q, want %q", resp.Code, StatusCodeValidationError)
	}
	if resp.Details["field"] != "Name" {
		t.Errorf("details = %v, want field Name", resp.Details)
	}
	if resp.StackTrace == "" {
		t.Error("stack trace should be captured")
	}
}

func TestErrorToResponseUnknownType(t *testing.T) {
	resp := errorToResponse(errors.New("plain"))

	if resp.Code != StatusCodeUnknownError {
		t.Errorf("code = %q, want %q", resp.Code, StatusCodeUnknownError)
	}
	if resp.Message != "plain" {
		t.Errorf("message = %q, want plain", resp.Message)
	}
}
