// Package session keeps the signed-in user's token and profile. It is the
// only place the CLI reads authentication state from; the values are mirrored
// to the local metadata store so a session survives restarts.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

// Metadata keys.
const (
	keyToken = "token"
	keyUser  = "user"
)

var newMetadataRepo = func(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

type Session struct {
	db *sql.DB

	mu    sync.RWMutex
	token string
	user  *models.User
}

func New(db *sql.DB) *Session {
	return &Session{db: db}
}

// Load restores a previously saved session. A stored profile that cannot be
// decoded, or a token without a profile, clears the session.
func (s *Session) Load(ctx context.Context) error {
	repo := newMetadataRepo(s.db)

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return err
	}
	rawUser, err := repo.Get(ctx, keyUser)
	if err != nil {
		return err
	}

	if len(token) == 0 || len(rawUser) == 0 {
		return s.Invalidate(ctx)
	}

	var u models.User
	if err := json.Unmarshal(rawUser, &u); err != nil {
		return s.Invalidate(ctx)
	}

	s.mu.Lock()
	s.token = string(token)
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Start records a freshly issued token together with its user.
func (s *Session) Start(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("session: token and user are required")
	}
	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := newMetadataRepo(tx)
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, rawUser)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// Invalidate forgets the session. In-memory state is cleared even when the
// store cannot be updated.
func (s *Session) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := newMetadataRepo(tx)
		if err := repo.Delete(ctx, keyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, keyUser)
	})
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Active() bool {
	return s.Token() != ""
}
