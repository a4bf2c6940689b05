// Package identity is the login placeholder: it remembers a display name per
// user and renders the header. There is no authentication.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/present"
)

const (
	ScreenCatalog = "catalog"
	ScreenDetails = "details"
	ScreenCart    = "cart"

	searchPlaceholder = "Pesquisa..."
)

type Service struct {
	store  Store
	delay  time.Duration
	logger *zap.Logger
}

// NewService builds the service. delay simulates the remote login round trip.
func NewService(store Store, delay time.Duration, logger *zap.Logger) *Service {
	return &Service{store: store, delay: delay, logger: logger.Named("identity")}
}

type LoginResult struct {
	UserName string `json:"userName"`
	Message  string `json:"message"`
}

// Login accepts any non-blank credentials and stores the local part of the
// e-mail as the display name.
func (s *Service) Login(ctx context.Context, userID, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return LoginResult{}, apperr.Validation("credentials", present.LoginMissingField)
	}

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return LoginResult{}, ctx.Err()
		}
	}

	name, _, _ := strings.Cut(email, "@")
	if err := s.store.Set(ctx, userID, name); err != nil {
		return LoginResult{}, fmt.Errorf("store display name: %w", err)
	}
	s.logger.Info("user signed in", zap.String("user_id", userID))

	return LoginResult{UserName: name, Message: fmt.Sprintf("Bem-vindo(a), %s!", name)}, nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear display name: %w", err)
	}
	return nil
}

type HeaderView struct {
	UserName          string `json:"userName,omitempty"`
	LoggedIn          bool   `json:"loggedIn"`
	Login             string `json:"login,omitempty"`
	Back              bool   `json:"back"`
	SearchPlaceholder string `json:"searchPlaceholder"`
}

// Header renders the top bar. The details and cart screens get a back button
// instead of the menu.
func (s *Service) Header(ctx context.Context, userID, screen string) (HeaderView, error) {
	name, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return HeaderView{}, fmt.Errorf("read display name: %w", err)
	}

	v := HeaderView{
		Back:              screen == ScreenDetails || screen == ScreenCart,
		SearchPlaceholder: searchPlaceholder,
	}
	if ok && name != "" {
		v.UserName = name
		v.LoggedIn = true
	} else {
		v.Login = present.LoginLabel
	}
	return v, nil
}
