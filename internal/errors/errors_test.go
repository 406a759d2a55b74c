package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "event not found",
			},
			want: "event not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeMalformedResponse,
				Message: "decode events page",
				Cause:   errors.New("unexpected EOF"),
			},
			want: "decode events page: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeRequestFailed, "wrapped error")

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
	if Wrap(nil, ErrCodeRequestFailed, "x") != nil {
		t.Errorf("Wrap(nil) should return nil")
	}
}

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode ErrorCode
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, "unauthorized\n", ErrCodeAuthExpired, "unauthorized"},
		{"not found", http.StatusNotFound, "", ErrCodeNotFound, "HTTP 404"},
		{"bad request body", http.StatusBadRequest, "bad regex", ErrCodeRequestFailed, "bad regex"},
		{"bad gateway empty", http.StatusBadGateway, "  ", ErrCodeRequestFailed, "HTTP 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromHTTPStatus(tt.status, []byte(tt.body))
			if err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", err.Code, tt.wantCode)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Status != tt.status {
				t.Errorf("Status = %d, want %d", err.Status, tt.status)
			}
		})
	}
}

func TestIsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("list events: %w", AuthExpired("unauthorized"))
	if !IsAuthExpired(wrapped) {
		t.Errorf("IsAuthExpired should see through wrapping")
	}
	if IsRequestFailed(wrapped) {
		t.Errorf("auth expiry is not a failed request")
	}

	malformed := MalformedResponse(errors.New("eof"), "decode")
	if !IsMalformedResponse(malformed) || !IsRequestFailed(malformed) {
		t.Errorf("malformed responses are treated as failed requests")
	}
	if !IsRequestFailed(NotFound("gone")) {
		t.Errorf("not found is a failed request")
	}
	if !IsValidation(Validationf("bad %s", "limit")) {
		t.Errorf("IsValidation mismatch")
	}
	if GetCode(errors.New("plain")) != "" {
		t.Errorf("plain errors carry no code")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(RequestFailed(500, "boom")); got != "boom" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(errors.New("dial tcp: refused")); got != "dial tcp: refused" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil) = %q", got)
	}
}
