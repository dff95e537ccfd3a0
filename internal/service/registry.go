package service

import (
	"context"
	"errors"

	"github.com/keygate/keygate/internal/model"
	"github.com/keygate/keygate/internal/store"
)

// ErrValidation is returned when a request is missing required fields.
var ErrValidation = errors.New("missing required field")

// Registry creates end-user records bound to a claimed API key.
type Registry struct {
	store *store.Store
}

// NewRegistry creates a Registry backed by the given store.
func NewRegistry(st *store.Store) *Registry {
	return &Registry{store: st}
}

// RegisterInput is the profile a new user supplies along with the API key
// they were issued.
type RegisterInput struct {
	Firstname string
	Lastname  string
	Email     string
	APIKey    string
}

// Register validates the input and creates the user atomically with the
// claim of the supplied key. On any failure nothing persists: the key stays
// unclaimed and no user row exists.
func (r *Registry) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Firstname == "" || in.Lastname == "" || in.Email == "" || in.APIKey == "" {
		return nil, ErrValidation
	}

	user := &model.User{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Email:     in.Email,
	}
	if err := r.store.RegisterUser(ctx, user, in.APIKey); err != nil {
		return nil, err
	}
	return user, nil
}

// Users returns all registered users.
func (r *Registry) Users(ctx context.Context) ([]model.User, error) {
	return r.store.ListUsers(ctx)
}
