package users

import (
	"context"

	"playdeck/shared/go/models"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, username, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (int64, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// Tokens issues bearer tokens for authenticated users.
type Tokens interface {
	Issue(userID int64) (string, error)
}

// Sessions tears down per-user playback state on logout.
type Sessions interface {
	Close(ctx context.Context, userID int64)
}

// Service exposes account workflows.
type Service interface {
	Signup(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, userID int64) error
	Me(ctx context.Context, userID int64) (models.User, error)
}

type service struct {
	store    Store
	tokens   Tokens
	sessions Sessions
}

// New wires a Service backed by the provided collaborators.
func New(store Store, tokens Tokens, sessions Sessions) Service {
	return &service{store: store, tokens: tokens, sessions: sessions}
}

func (s *service) Signup(ctx context.Context, username, password string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.CreateUser(ctx, username, password)
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(userID)
}

func (s *service) Logout(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.sessions.Close(ctx, userID)
	return nil
}

func (s *service) Me(ctx context.Context, userID int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.UserByID(ctx, userID)
}
