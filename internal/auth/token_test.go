package auth_test

import (
	"errors"
	"testing"
	"time"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueDecodeRoundTrip(t *testing.T) {
	m := auth.NewTokenManager("test-secret", time.Hour)

	cases := []auth.Principal{
		auth.AdminPrincipal{AdminID: 1, Subject: "admin"},
		auth.RestaurantPrincipal{RestaurantID: 42, Subject: "owner@bistro.test"},
	}
	for _, want := range cases {
		token, err := m.Issue(want)
		if err != nil {
			t.Fatalf("Issue(%v): %v", want, err)
		}
		got, err := m.Decode(token)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != want {
			t.Fatalf("got %#v, want %#v", got, want)
		}
	}
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewTokenManager("secret-a", time.Hour).Issue(auth.AdminPrincipal{AdminID: 1, Subject: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = auth.NewTokenManager("secret-b", time.Hour).Decode(token)
	if !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	m := auth.NewTokenManager("secret", -time.Minute)
	token, err := m.Issue(auth.RestaurantPrincipal{RestaurantID: 3, Subject: "r@x.test"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Decode(token); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeRejectsTokenWithoutExpiry(t *testing.T) {
	id := uint(1)
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{Role: auth.RoleAdmin, AdminID: &id})
	token, err := raw.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.NewTokenManager("secret", time.Hour).Decode(token); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeRejectsOtherAlgorithms(t *testing.T) {
	id := uint(1)
	claims := auth.Claims{
		Role:    auth.RoleAdmin,
		AdminID: &id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.NewTokenManager("secret", time.Hour).Decode(token); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeRejectsMissingIdentity(t *testing.T) {
	claims := auth.Claims{
		Role: auth.RoleRestaurant,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.NewTokenManager("secret", time.Hour).Decode(token); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	m := auth.NewTokenManager("secret", time.Hour)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Decode(token); !errors.Is(err, apperror.ErrInvalidToken) {
			t.Fatalf("Decode(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}
