package session

import (
	"context"
	"fmt"

	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/models"
)

type UserDirectory interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	RegisterUser(ctx context.Context, form models.UserForm) error
	UpdateUser(ctx context.Context, id int64, form models.UserForm) error
	DeleteUser(ctx context.Context, id int64) error
}

// Users is the admin user management flow.
type Users struct {
	dir UserDirectory
}

// NewUsers fails unless user is an administrator.
func NewUsers(dir UserDirectory, user *authz.AuthUser) (*Users, error) {
	if err := authz.RequireAdmin(user); err != nil {
		return nil, fmt.Errorf("administrators only: %w", err)
	}
	return &Users{dir: dir}, nil
}

func (u *Users) List(ctx context.Context) ([]models.User, error) {
	return u.dir.ListUsers(ctx)
}

func (u *Users) Register(ctx context.Context, form models.UserForm) error {
	form, err := booking.CheckRegistration(form)
	if err != nil {
		return err
	}
	return u.dir.RegisterUser(ctx, form)
}

func (u *Users) Update(ctx context.Context, id int64, form models.UserForm) error {
	form, err := booking.CheckUpdate(form)
	if err != nil {
		return err
	}
	return u.dir.UpdateUser(ctx, id, form)
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return booking.NewError(booking.InputIncomplete, "select a user", nil)
	}
	return u.dir.DeleteUser(ctx, id)
}
