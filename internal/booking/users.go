package booking

import (
	"strings"

	"github.com/codr1/quadras/internal/models"
)

const (
	ReasonFillAllFields     = "fill in all fields"
	ReasonNameEmailRequired = "fill in name and e-mail"
	ReasonInvalidUserType   = "user type must be socio or admin"
)

// CheckRegistration normalizes a new user's form and requires every field.
func CheckRegistration(form models.UserForm) (models.UserForm, error) {
	form = normalizeForm(form)
	if form.Name == "" || form.Email == "" || form.Password == "" || form.Type == "" {
		return form, NewError(InputIncomplete, ReasonFillAllFields, nil)
	}
	if !validUserType(form.Type) {
		return form, NewError(InputIncomplete, ReasonInvalidUserType, nil)
	}
	return form, nil
}

// CheckUpdate normalizes an edit form. The password is never changed by an
// edit, and an empty type keeps the current one.
func CheckUpdate(form models.UserForm) (models.UserForm, error) {
	form = normalizeForm(form)
	form.Password = ""
	if form.Name == "" || form.Email == "" {
		return form, NewError(InputIncomplete, ReasonNameEmailRequired, nil)
	}
	if form.Type != "" && !validUserType(form.Type) {
		return form, NewError(InputIncomplete, ReasonInvalidUserType, nil)
	}
	return form, nil
}

func normalizeForm(form models.UserForm) models.UserForm {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	form.Type = strings.ToLower(strings.TrimSpace(form.Type))
	return form
}

func validUserType(value string) bool {
	return value == models.UserTypeMember || value == models.UserTypeAdmin
}
