package screens

import (
	"context"
	"errors"
	"log/slog"

	"irisguide/pkg/authstub"
	"irisguide/pkg/domain"
	"irisguide/pkg/nav"
)

// Registered is shown on the login screen after a successful sign-up.
const Registered = "Registration successful! Please log in."

// Registration serves REGISTER and GUIDE_REGISTER.
type Registration struct {
	env  *Env
	role domain.Role
	msg  string
}

func (s *Registration) Show(ctx context.Context, _ nav.State) error {
	e := s.env
	if s.role == domain.RoleGuide {
		e.header("Guide Sign Up")
		e.println("Create an account to assist your IRIS user.")
	} else {
		e.header("Create Account")
		e.println("Join IRIS and pair your glass.")
	}
	e.inline(&s.msg)
	e.menu(
		option{"s", "Sign Up"},
		option{"l", "Already have an account? Log In"},
		option{"b", "Back"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "s":
		return s.register(ctx)
	case "l":
		e.Nav.Goto(loginFor(s.role), nil)
	case "b":
		e.Nav.Goto(nav.Welcome, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

func (s *Registration) register(ctx context.Context) error {
	e := s.env
	form := authstub.RegistrationForm{Role: s.role}
	deviceLabel := "Device ID: "
	if s.role == domain.RoleGuide {
		deviceLabel = "User's Device ID: "
	}
	for _, f := range []struct {
		label  string
		dst    *string
		secret bool
	}{
		{"Full Name: ", &form.FullName, false},
		{"Email: ", &form.Email, false},
		{"Password: ", &form.Password, true},
		{"Confirm Password: ", &form.ConfirmPassword, true},
		{deviceLabel, &form.DeviceID, false},
	} {
		read := e.Prompt.Line
		if f.secret {
			read = e.Prompt.Secret
		}
		v, err := read(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if err := form.Validate(); err != nil {
		s.msg = err.Error()
		return nil
	}
	acct, err := e.Auth.Register(ctx, form.Account())
	switch {
	case err == nil:
	case fatal(err):
		return err
	case errors.Is(err, domain.ErrDuplicateAccount):
		s.msg = domain.ErrDuplicateAccount.Error()
		return nil
	default:
		if m, ok := validationMessage(err); ok {
			s.msg = m
			return nil
		}
		slog.Warn("registration failed", "role", s.role.Short(), "err", err)
		s.msg = "Registration failed. Please try again."
		return nil
	}
	slog.Info("account registered", "role", s.role.Short(), "account_id", acct.ID)
	to := loginFor(s.role)
	e.Nav.Goto(to, nav.NoticePayload{To: to, Text: Registered})
	return nil
}
