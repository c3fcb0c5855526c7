package service

import (
	"context"
	"errors"

	"github.com/spendwise/backend/internal/auth"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/store"
)

// ProfileInput is the registration payload; empty fields fall back to the
// token claims.
type ProfileInput struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// RegisterUser creates the caller's profile once and reports whether it already existed.
func (s *FinanceService) RegisterUser(ctx context.Context, claims *auth.UserClaims, in ProfileInput) (string, error) {
	const op = "service.RegisterUser"

	user := &model.User{
		ID:        claims.UID,
		Email:     firstNonEmpty(in.Email, claims.Email),
		Name:      firstNonEmpty(in.Name, claims.DisplayName),
		Picture:   firstNonEmpty(in.Picture, claims.Picture),
		CreatedAt: s.now().UTC(),
	}
	if user.Email == "" {
		return "", model.Errorf(model.ErrMalformedInput, op, "email is required")
	}

	err := s.store.CreateUser(ctx, user)
	if errors.Is(err, store.ErrAlreadyExists) {
		return "User already registered", nil
	}
	if err != nil {
		return "", storeError(op, err)
	}
	s.log.WithField("userId", user.ID).Info("User.Register.Complete")
	return "User registered successfully", nil
}

// Profile returns the caller's stored profile.
func (s *FinanceService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError("service.Profile", err)
	}
	return user, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
