package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_ErrorFormat(t *testing.T) {
	err := NewTaskNotFoundError()
	want := "[TASK_NOT_FOUND] Task not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAPIError_WorksWithErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("service failed: %w", NewEmailTakenError())

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As should unwrap APIError")
	}
	if apiErr.Code != ErrCodeEmailTaken {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeEmailTaken)
	}
}

func TestAPIError_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *APIError
		code    string
		message string
	}{
		{"EmailTaken", NewEmailTakenError(), ErrCodeEmailTaken, "Email already in use"},
		{"InvalidCredentials", NewInvalidCredentialsError(), ErrCodeInvalidCredentials, "Invalid credentials"},
		{"Unauthenticated", NewUnauthenticatedError(), ErrCodeUnauthenticated, "Not authenticated"},
		{"UserNotFound", NewUserNotFoundError(), ErrCodeUserNotFound, "User not found"},
		{"TaskNotFound", NewTaskNotFoundError(), ErrCodeTaskNotFound, "Task not found"},
		{"TaskForbidden", NewTaskForbiddenError(), ErrCodeTaskForbidden, "You are not authorized to access this task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
		})
	}
}
