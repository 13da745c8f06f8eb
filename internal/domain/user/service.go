package user

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/yanqian/usergate/pkg/errors"
	"github.com/yanqian/usergate/pkg/util"
)

// Service exposes the user collection operations.
type Service interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, payload *Payload) (User, error)
	Update(ctx context.Context, id int64, payload *Payload) (User, error)
	Delete(ctx context.Context, id int64) (User, error)
}

type service struct {
	cfg    Config
	repo   Repository
	now    util.Clock
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		now:    util.NowUTC,
		logger: logger.With("component", "user.service"),
	}
}

func (s *service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap("user_error", "failed to list users", err)
	}
	if len(users) == 0 {
		return nil, apperrors.Wrap("not_found", "no users found", nil)
	}
	return users, nil
}

func (s *service) Get(ctx context.Context, id int64) (User, error) {
	if err := validateID(id); err != nil {
		return User{}, err
	}
	return s.load(ctx, id)
}

func (s *service) Create(ctx context.Context, payload *Payload) (User, error) {
	if err := Validate(payload); err != nil {
		return User{}, err
	}
	if s.cfg.RejectDuplicateNames {
		_, exists, err := s.repo.FindByName(ctx, payload.Name)
		if err != nil {
			return User{}, apperrors.Wrap("user_error", "failed to check existing user", err)
		}
		if exists {
			return User{}, apperrors.Wrap("already_exists", fmt.Sprintf("user %s already exists", payload.Name), nil)
		}
	}
	created, err := s.repo.Add(ctx, User{
		Name:       payload.Name,
		Email:      payload.Email,
		Department: payload.Department,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return User{}, apperrors.Wrap("user_error", "failed to create user", err)
	}
	s.logger.Info("user created", "user_id", created.ID)
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, payload *Payload) (User, error) {
	if err := validateID(id); err != nil {
		return User{}, err
	}
	if payload == nil {
		return User{}, Validate(nil)
	}
	if _, err := s.load(ctx, id); err != nil {
		return User{}, err
	}
	if err := Validate(payload); err != nil {
		return User{}, err
	}
	updated, found, err := s.repo.Replace(ctx, id, *payload)
	if err != nil {
		return User{}, apperrors.Wrap("user_error", "failed to update user", err)
	}
	if !found {
		return User{}, notFound(id)
	}
	s.logger.Info("user updated", "user_id", id)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) (User, error) {
	if err := validateID(id); err != nil {
		return User{}, err
	}
	removed, found, err := s.repo.Remove(ctx, id)
	if err != nil {
		return User{}, apperrors.Wrap("user_error", "failed to delete user", err)
	}
	if !found {
		return User{}, notFound(id)
	}
	s.logger.Info("user deleted", "user_id", id)
	return removed, nil
}

func (s *service) load(ctx context.Context, id int64) (User, error) {
	u, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, apperrors.Wrap("user_error", "failed to load user", err)
	}
	if !found {
		return User{}, notFound(id)
	}
	return u, nil
}

func validateID(id int64) error {
	if id <= 0 {
		return apperrors.Invalid("id", "invalid user id")
	}
	return nil
}

func notFound(id int64) error {
	return apperrors.Wrap("not_found", fmt.Sprintf("user %d not found", id), nil)
}
