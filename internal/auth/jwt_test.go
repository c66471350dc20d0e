package auth

import (
	"testing"
	"time"

	"github.com/erazemk/pralnica/internal/model"
)

func newTestSigner(t *testing.T, secret string, ttl time.Duration) *Signer {
	t.Helper()
	s, err := NewSigner(secret, ttl)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

func TestIssueAndVerify(t *testing.T) {
	s := newTestSigner(t, "test-secret-key", time.Hour)
	dept := int64(4)
	user := &model.User{ID: 7, Username: "nurse", Role: model.RoleDepartment, DepartmentID: &dept}

	token, issued, err := s.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" || issued.ID == "" {
		t.Fatal("expected token and jti")
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "nurse" || claims.Role != model.RoleDepartment {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.DepartmentID == nil || *claims.DepartmentID != 4 {
		t.Errorf("expected department 4, got %v", claims.DepartmentID)
	}
	if claims.ID != issued.ID {
		t.Errorf("jti mismatch: %q vs %q", claims.ID, issued.ID)
	}
}

func TestIssueUniqueIDs(t *testing.T) {
	s := newTestSigner(t, "secret", 0)
	user := &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}

	_, a, _ := s.Issue(user)
	_, b, _ := s.Issue(user)
	if a.ID == b.ID {
		t.Errorf("expected distinct token ids, got %q twice", a.ID)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, _ := newTestSigner(t, "secret1", time.Hour).Issue(&model.User{ID: 1, Role: model.RoleAdmin})

	if _, err := newTestSigner(t, "secret2", time.Hour).Verify(token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestVerifyInvalid(t *testing.T) {
	if _, err := newTestSigner(t, "secret", time.Hour).Verify("not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestVerifyExpired(t *testing.T) {
	s := newTestSigner(t, "secret", time.Hour)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := s.Issue(&model.User{ID: 1, Role: model.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}

	s.now = time.Now
	if _, err := s.Verify(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTTL(t *testing.T) {
	if got := newTestSigner(t, "s", 0).TTL(); got != DefaultTTL {
		t.Errorf("expected default TTL, got %v", got)
	}

	s := newTestSigner(t, "s", 2*time.Hour)
	_, claims, _ := s.Issue(&model.User{ID: 1, Role: model.RoleAdmin})
	if d := claims.ExpiresAt.Sub(claims.IssuedAt.Time); d != 2*time.Hour {
		t.Errorf("expected 2h lifetime, got %v", d)
	}
}

func TestNewSignerEmptySecret(t *testing.T) {
	if _, err := NewSigner("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", ModeJWT, false},
		{"jwt", ModeJWT, false},
		{"mock", ModeMock, false},
		{"none", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}
