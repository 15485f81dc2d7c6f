package booking

import (
	"testing"

	"github.com/codr1/quadras/internal/models"
)

func TestCheckRegistration(t *testing.T) {
	tests := []struct {
		name   string
		form   models.UserForm
		reason string
	}{
		{name: "missing_password", form: models.UserForm{Name: "Lia", Email: "lia@example.com", Type: "socio"}, reason: ReasonFillAllFields},
		{name: "bad_type", form: models.UserForm{Name: "Lia", Email: "lia@example.com", Password: "x", Type: "gerente"}, reason: ReasonInvalidUserType},
		{name: "ok", form: models.UserForm{Name: " Lia ", Email: " Lia@Example.com ", Password: "x", Type: "ADMIN"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := CheckRegistration(test.form)
			if test.reason != "" {
				if !IsKind(err, InputIncomplete) || err.Error() != test.reason {
					t.Fatalf("expected %q, got %v", test.reason, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckRegistration: %v", err)
			}
			if got.Name != "Lia" || got.Email != "lia@example.com" || got.Type != "admin" {
				t.Fatalf("form = %+v", got)
			}
		})
	}
}

func TestCheckUpdate_DropsPassword(t *testing.T) {
	got, err := CheckUpdate(models.UserForm{Name: "Lia", Email: "lia@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("CheckUpdate: %v", err)
	}
	if got.Password != "" || got.Type != "" {
		t.Fatalf("form = %+v", got)
	}
	if _, err := CheckUpdate(models.UserForm{Name: "Lia"}); err == nil || err.Error() != ReasonNameEmailRequired {
		t.Fatalf("missing email: got %v", err)
	}
}
