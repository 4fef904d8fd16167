package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/pkg/apperror"

	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
	AdminID      *uint  `json:"admin_id,omitempty"`
	RestaurantID *uint  `json:"restaurant_id,omitempty"`
}

// MeResponse describes the caller behind a token
type MeResponse struct {
	Role         string `json:"role"`
	Subject      string `json:"sub"`
	AdminID      *uint  `json:"admin_id,omitempty"`
	RestaurantID *uint  `json:"restaurant_id,omitempty"`
}

// AuthService verifies credentials and turns tokens back into principals
type AuthService interface {
	Authenticate(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Decode(token string) (auth.Principal, error)
	Me(p auth.Principal) MeResponse
	BootstrapAdmin(ctx context.Context, username, email, password string) (bool, error)
}

type authService struct {
	userRepo       repository.UserRepository
	restaurantRepo repository.RestaurantRepository
	tokens         *auth.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, restaurantRepo repository.RestaurantRepository, tokens *auth.TokenManager) AuthService {
	return &authService{userRepo: userRepo, restaurantRepo: restaurantRepo, tokens: tokens}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate tries the admin accounts by username first, then live
// restaurants by email.
func (s *authService) Authenticate(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	login := strings.TrimSpace(req.Username)

	user, err := s.userRepo.GetByUsername(ctx, login)
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if err == nil && user.IsAdmin && passwordMatches(user.PasswordHash, req.Password) {
		return s.issue(auth.AdminPrincipal{AdminID: user.ID, Subject: user.Username})
	}

	restaurant, err := s.restaurantRepo.FindByEmail(ctx, login)
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up restaurant: %w", err)
	}
	if err == nil && passwordMatches(restaurant.PasswordHash, req.Password) {
		return s.issue(auth.RestaurantPrincipal{RestaurantID: restaurant.ID, Subject: restaurant.Email})
	}

	return nil, apperror.ErrInvalidCredentials
}

func (s *authService) issue(p auth.Principal) (*TokenResponse, error) {
	token, err := s.tokens.Issue(p)
	if err != nil {
		return nil, err
	}
	me := s.Me(p)
	return &TokenResponse{
		AccessToken:  token,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		Role:         me.Role,
		AdminID:      me.AdminID,
		RestaurantID: me.RestaurantID,
	}, nil
}

func (s *authService) Decode(token string) (auth.Principal, error) {
	return s.tokens.Decode(token)
}

func (s *authService) Me(p auth.Principal) MeResponse {
	res := MeResponse{Role: p.Role(), Subject: p.LoginSubject()}
	switch v := p.(type) {
	case auth.AdminPrincipal:
		id := v.AdminID
		res.AdminID = &id
	case auth.RestaurantPrincipal:
		id := v.RestaurantID
		res.RestaurantID = &id
	}
	return res
}

// BootstrapAdmin creates the configured admin unless a user with that
// username already exists. It reports whether an account was created.
func (s *authService) BootstrapAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if username == "" || password == "" {
		return false, errors.New("admin username and password are required")
	}

	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !repository.IsNotFound(err) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		IsAdmin:      true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			// another instance won the race
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}
