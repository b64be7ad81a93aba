package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lmoren/taskdeck-be/internal/models"
)

func TestMain(m *testing.M) {
	SetSecret("test-secret")
	m.Run()
}

func TestGenerateAndValidateJWT(t *testing.T) {
	user := models.User{
		ID:        "11111111-2222-3333-4444-555555555555",
		FirstName: "John",
		Email:     "john@example.com",
	}

	token, err := GenerateJWT(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("expected user id %s, got %s", user.ID, claims.UserID)
	}
	if claims.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, claims.Email)
	}
	if claims.FirstName != user.FirstName {
		t.Errorf("expected first name %s, got %s", user.FirstName, claims.FirstName)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 23*time.Hour || remaining > 24*time.Hour {
		t.Errorf("expected a 24 hour validity window, %v remaining", remaining)
	}
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateJWT(signed); err == nil {
		t.Fatal("expected validation to fail for a foreign signature")
	}
}

func TestValidateJWT_Expired(t *testing.T) {
	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateJWT(signed); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestValidateJWT_Garbage(t *testing.T) {
	if _, err := ValidateJWT("not.a.token"); err == nil {
		t.Fatal("expected validation to fail for a malformed token")
	}
}
