package auth

import (
	"fmt"

	"github.com/erazemk/pralnica/internal/model"
)

// Authentication modes.
const (
	// ModeJWT requires a valid, unrevoked session token on every request.
	ModeJWT = "jwt"
	// ModeMock skips token checks and treats every caller as MockClaims.
	// It exists for local development only.
	ModeMock = "mock"
)

// ParseMode validates an authentication mode name. An empty name selects ModeJWT.
func ParseMode(s string) (string, error) {
	switch s {
	case "", ModeJWT:
		return ModeJWT, nil
	case ModeMock:
		return ModeMock, nil
	}
	return "", fmt.Errorf("unknown auth mode %q (want %s or %s)", s, ModeJWT, ModeMock)
}

// MockClaims is the fixed identity injected in ModeMock. It has no backing
// user row, so UserID is zero.
func MockClaims() *Claims {
	return &Claims{Username: "mock-admin", Role: model.RoleAdmin}
}
