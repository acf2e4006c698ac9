package screens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"irisguide/pkg/auth"
	"irisguide/pkg/authstub"
	"irisguide/pkg/domain"
	"irisguide/pkg/nav"
)

const (
	impairedNotFound = "No account found with this email. Please register first."
	guideNotFound    = "No guide is registered with this email. Please sign up."
	loginFailed      = "Login failed. Please try again."
)

// Login serves IMPAIRED_LOGIN and GUIDE_LOGIN.
type Login struct {
	env  *Env
	role domain.Role
	msg  string
}

func (s *Login) Show(ctx context.Context, st nav.State) error {
	e := s.env
	if s.role == domain.RoleGuide {
		e.header("Guide Login")
	} else {
		e.header("Login")
	}
	e.notice(st)
	e.inline(&s.msg)
	e.menu(
		option{"l", "Log In"},
		option{"r", "Create an account"},
		option{"f", "Forgot Password?"},
		option{"b", "Back"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "l":
		return s.login(ctx)
	case "r":
		if s.role == domain.RoleGuide {
			e.Nav.Goto(nav.GuideRegister, nil)
		} else {
			e.Nav.Goto(nav.Register, nil)
		}
	case "f":
		e.Nav.Goto(nav.ForgotPassword, nav.RolePayload{To: nav.ForgotPassword, Role: s.role})
	case "b":
		e.Nav.Goto(nav.Welcome, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

func (s *Login) login(ctx context.Context) error {
	e := s.env
	email, err := e.Prompt.Line("Email: ")
	if err != nil {
		return err
	}
	password, err := e.Prompt.Secret("Password: ")
	if err != nil {
		return err
	}
	form := authstub.LoginForm{Email: email, Password: password}
	if err := form.Validate(); err != nil {
		s.msg = err.Error()
		return nil
	}
	if s.role == domain.RoleGuide {
		if err := auth.ValidatePassword(password); err != nil {
			s.msg = err.Error()
			return nil
		}
	}
	sess, err := e.Auth.Login(ctx, s.role, email, password)
	if err != nil {
		if fatal(err) {
			return err
		}
		s.msg = s.loginError(err)
		return nil
	}
	e.signIn(sess)
	slog.Info("login", "role", s.role.Short(), "account_id", sess.Account.ID)
	if s.role == domain.RoleGuide {
		e.Nav.Goto(nav.GuideMain, nil)
	} else {
		e.Nav.Goto(nav.Pairing, nil)
	}
	return nil
}

func (s *Login) loginError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if s.role == domain.RoleGuide {
			return guideNotFound
		}
		return impairedNotFound
	case errors.Is(err, domain.ErrInvalidCredentials):
		return domain.ErrInvalidCredentials.Error()
	}
	if m, ok := validationMessage(err); ok {
		return m
	}
	slog.Warn("login failed", "role", s.role.Short(), "err", err)
	return loginFailed
}

// ForgotPassword pretends to send a reset link. It never reveals whether
// the email is registered.
type ForgotPassword struct {
	env *Env
	msg string
}

func (s *ForgotPassword) Show(_ context.Context, st nav.State) error {
	e := s.env
	role := domain.RoleImpaired
	if p, ok := st.Payload.(nav.RolePayload); ok && p.Role.Valid() {
		role = p.Role
	}
	e.header("Forgot Password")
	e.println("Enter your email and we'll send you a link to reset your password.")
	e.inline(&s.msg)
	e.menu(
		option{"s", "Send Reset Link"},
		option{"b", "Back to Login"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "s":
		email, err := e.Prompt.Line("Email: ")
		if err != nil {
			return err
		}
		s.msg = resetMessage(email)
	case "b":
		e.Nav.Goto(loginFor(role), nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

func resetMessage(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Please enter your email address."
	}
	if auth.ValidateEmail(email) != nil {
		return "Please enter a valid email address."
	}
	return fmt.Sprintf("If an account exists for %s, you will receive a password reset link.", email)
}
