package main

import (
	"context"
	"fmt"

	"github.com/codr1/quadras/internal/models"
	"github.com/codr1/quadras/internal/session"
)

const usersUsage = "list | add | edit | delete"

func runUsers(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "Usage: quadras users %s\n", usersUsage)
		return errUsage
	}
	user, err := a.authenticate()
	if err != nil {
		return err
	}
	users, err := session.NewUsers(a.client, user)
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		return listUsers(ctx, a, users, args[1:])
	case "add":
		return addUser(ctx, a, users, args[1:])
	case "edit":
		return editUser(ctx, a, users, args[1:])
	case "delete":
		return deleteUser(ctx, a, users, args[1:])
	default:
		return fmt.Errorf("unknown users command %q, want %s", args[0], usersUsage)
	}
}

func listUsers(ctx context.Context, a *app, users *session.Users, args []string) error {
	fs := newFlagSet(a, "users list", "")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	list, err := users.List(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tTYPE")
	for _, u := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Type)
	}
	return w.Flush()
}

func addUser(ctx context.Context, a *app, users *session.Users, args []string) error {
	fs := newFlagSet(a, "users add", "-name NAME -email EMAIL -password PASSWORD [-type socio|admin]")
	var form models.UserForm
	fs.StringVar(&form.Name, "name", "", "full name")
	fs.StringVar(&form.Email, "email", "", "e-mail used to log in")
	fs.StringVar(&form.Password, "password", "", "initial password")
	fs.StringVar(&form.Type, "type", models.UserTypeMember, "user type: socio or admin")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if err := users.Register(ctx, form); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %s registered\n", form.Email)
	return nil
}

func editUser(ctx context.Context, a *app, users *session.Users, args []string) error {
	fs := newFlagSet(a, "users edit", "-id ID -name NAME -email EMAIL [-type socio|admin]")
	id := fs.Int64("id", 0, "user id")
	var form models.UserForm
	fs.StringVar(&form.Name, "name", "", "full name")
	fs.StringVar(&form.Email, "email", "", "e-mail used to log in")
	fs.StringVar(&form.Type, "type", "", "user type: socio or admin (unchanged when empty)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("-id is required")
	}
	if err := users.Update(ctx, *id, form); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %d updated\n", *id)
	return nil
}

func deleteUser(ctx context.Context, a *app, users *session.Users, args []string) error {
	fs := newFlagSet(a, "users delete", "-id ID [-yes]")
	id := fs.Int64("id", 0, "user id")
	yes := fs.Bool("yes", false, "delete without asking for confirmation")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("-id is required")
	}
	if !*yes {
		ok, err := a.confirm(fmt.Sprintf("Delete user %d and their reservations?", *id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "User not deleted")
			return nil
		}
	}
	if err := users.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %d deleted\n", *id)
	return nil
}
