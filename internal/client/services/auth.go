// Package services contains application services for the taskkeeper CLI.
// They check user input locally, call the API, and keep the session current.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Password length rules of the sign-up and sign-in forms.
const (
	minRegisterPassword = 8
	minLoginPassword    = 6
)

// Session is the authentication state the services read and update.
type Session interface {
	client.Credentials
	Start(ctx context.Context, token string, user *models.User) error
	User() *models.User
	Active() bool
}

// RegisterForm is what the user typed on sign-up.
type RegisterForm struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create an account and start a session for it.
//   - Login: authenticate and start a session.
//   - Logout: revoke the token on the server when possible and always
//     end the local session.
//   - Current: the signed-in user, or nil.
type AuthService interface {
	Register(ctx context.Context, form RegisterForm) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Current() *models.User
}

type authService struct {
	client  client.Client
	session Session
}

func NewAuthService(c client.Client, s Session) AuthService {
	return &authService{client: c, session: s}
}

func validateEmail(ve *client.ValidationError, email, invalidMsg string) {
	switch {
	case email == "":
		ve.Add("email", "Email is required.")
	case !emailPattern.MatchString(email):
		ve.Add("email", invalidMsg)
	}
}

func (a *authService) Register(ctx context.Context, form RegisterForm) (*models.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)

	ve := &client.ValidationError{}
	if form.Name == "" {
		ve.Add("name", "Name is required.")
	}
	validateEmail(ve, form.Email, "Email format is invalid.")
	switch {
	case form.Password == "":
		ve.Add("password", "Password is required.")
	case len(form.Password) < minRegisterPassword:
		ve.Add("password", fmt.Sprintf("Password must be at least %d characters.", minRegisterPassword))
	}
	switch {
	case form.PasswordConfirmation == "":
		ve.Add("password_confirmation", "Password confirmation is required.")
	case form.Password != form.PasswordConfirmation:
		ve.Add("password_confirmation", "Passwords do not match.")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	res, err := a.client.Register(ctx, client.RegisterRequest{
		Name:                 form.Name,
		Email:                form.Email,
		Password:             form.Password,
		PasswordConfirmation: form.PasswordConfirmation,
	})
	if err != nil {
		return nil, err
	}
	return a.start(ctx, res)
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)

	ve := &client.ValidationError{}
	validateEmail(ve, email, "Enter a valid email.")
	switch {
	case password == "":
		ve.Add("password", "Password is required.")
	case len(password) < minLoginPassword:
		ve.Add("password", fmt.Sprintf("Password must be at least %d characters.", minLoginPassword))
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	res, err := a.client.Login(ctx, client.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return a.start(ctx, res)
}

func (a *authService) start(ctx context.Context, res *client.AuthResponse) (*models.User, error) {
	if res == nil || res.Token == "" || res.User == nil {
		return nil, errors.New("server returned no session")
	}
	if err := a.session.Start(ctx, res.Token, res.User); err != nil {
		return nil, fmt.Errorf("session save error: %w", err)
	}
	return res.User, nil
}

// Logout asks the server to revoke the token, then ends the local session.
// A server failure is returned but never keeps the user signed in.
func (a *authService) Logout(ctx context.Context) error {
	if !a.session.Active() {
		return nil
	}

	remoteErr := a.client.Logout(ctx, a.session)
	if errors.Is(remoteErr, client.ErrUnauthorized) {
		remoteErr = nil
	}
	localErr := a.session.Invalidate(ctx)

	return errors.Join(remoteErr, localErr)
}

func (a *authService) Current() *models.User {
	return a.session.User()
}
