package httpapi

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type ctxKey string

const (
	ctxKeyRequest ctxKey = "taskkeeper-request"
	ctxKeyAuth    ctxKey = "taskkeeper-auth"
)

// requestInfo is created per request by the outermost middleware and filled
// in as the request travels inward, so the audit line can report it.
type requestInfo struct {
	RequestID string
	UserID    string
	Route     string
}

type authInfo struct {
	User   *models.User
	Claims *auth.Claims
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	if v, ok := ctx.Value(ctxKeyRequest).(*requestInfo); ok {
		return v
	}
	return &requestInfo{}
}

func authFrom(ctx context.Context) (authInfo, bool) {
	v, ok := ctx.Value(ctxKeyAuth).(authInfo)
	return v, ok
}
