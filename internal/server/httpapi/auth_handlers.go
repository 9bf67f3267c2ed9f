package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type authPayload struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func newAuthPayload(res *services.AuthResult) authPayload {
	return authPayload{User: res.User, Token: res.Token, ExpiresAt: res.ExpiresAt}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)

	var in services.RegisterInput
	if err := bindForm(r, &in, map[string]*string{
		"name":                  &in.Name,
		"email":                 &in.Email,
		"password":              &in.Password,
		"password_confirmation": &in.PasswordConfirmation,
	}); err != nil {
		writeValidation(w, err)
		return
	}

	res, err := s.users.Register(ctx, in)
	if err != nil {
		if services.IsValidation(err) {
			log.Info(ctx, "Validation failed on registration", "email", strings.ToLower(in.Email))
			writeValidation(w, err)
			return
		}
		log.Error(ctx, "Registration failed", "error", err)
		writeError(w, msgRegistrationFailed)
		return
	}

	log.Info(ctx, "User registered", "user_id", res.User.ID)
	writeSuccess(w, http.StatusCreated, msgRegistered, newAuthPayload(res))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)

	var in services.LoginInput
	if err := bindForm(r, &in, map[string]*string{
		"email":    &in.Email,
		"password": &in.Password,
	}); err != nil {
		writeValidation(w, err)
		return
	}

	res, err := s.users.Login(ctx, in)
	switch {
	case err == nil:
	case services.IsValidation(err):
		writeValidation(w, err)
		return
	case errors.Is(err, common.ErrorUnauthorized):
		log.Info(ctx, "Login rejected")
		writeFail(w, http.StatusUnauthorized, msgUnauthorized, msgInvalidCredentials)
		return
	default:
		log.Error(ctx, "Login failed", "error", err)
		writeError(w, msgLoginFailed)
		return
	}

	log.Info(ctx, "User logged in", "user_id", res.User.ID)
	writeSuccess(w, http.StatusOK, msgLoggedIn, newAuthPayload(res))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.requestLogger(r)

	a, _ := authFrom(ctx)
	if err := s.users.Logout(ctx, a.Claims); err != nil {
		log.Error(ctx, "Logout failed", "error", err)
		writeError(w, msgLogoutFailed)
		return
	}

	log.Info(ctx, "User logged out")
	writeSuccess(w, http.StatusOK, msgLoggedOut, nil)
}

func writeValidation(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		writeFail(w, http.StatusUnprocessableEntity, msgValidation, ve.Fields)
		return
	}
	writeFail(w, http.StatusUnprocessableEntity, msgValidation, nil)
}
