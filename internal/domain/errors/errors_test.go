package errors

import "testing"

func TestSentinelErrors(t *testing.T) {
	if ErrUserExists == nil {
		t.Error("ErrUserExists should not be nil")
	}
	if ErrInvalidCredentials == nil {
		t.Error("ErrInvalidCredentials should not be nil")
	}
	if ErrRateLimited == nil {
		t.Error("ErrRateLimited should not be nil")
	}
	if ErrSelfForbidden == nil {
		t.Error("ErrSelfForbidden should not be nil")
	}
}
