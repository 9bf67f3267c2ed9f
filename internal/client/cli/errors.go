package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
)

// errInvalidCredentials replaces ErrUnauthorized for a rejected login, where
// it does not mean an expired session.
var errInvalidCredentials = errors.New("invalid credentials")

// describeError turns a command error into the text shown to the user.
func describeError(err error) string {
	var ve *client.ValidationError
	var ae *client.APIError

	switch {
	case errors.As(err, &ve):
		return "Please fix the following:\n" + fieldLines(ve.Fields)
	case errors.Is(err, errInvalidCredentials):
		return "Invalid credentials."
	case errors.Is(err, services.ErrNotLoggedIn):
		return "You are not logged in. Use 'login' or 'register' first."
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, client.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, client.ErrNotFound):
		return "Task not found."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, please try again later."
	case errors.As(err, &ae):
		return fmt.Sprintf("Error: %s", ae.Message)
	default:
		return fmt.Sprintf("Error: %s", err.Error())
	}
}

func fieldLines(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, msg := range fields[k] {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
