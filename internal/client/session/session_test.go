package session

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	db, err := client.InitDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

var ann = &models.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: "USER", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}

func TestStartThenLoadInNewSession(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()

	s := New(db)
	assert.False(t, s.Active())
	require.NoError(t, s.Start(ctx, "tok", ann))
	assert.True(t, s.Active())

	restored := New(db)
	require.NoError(t, restored.Load(ctx))

	assert.Equal(t, "tok", restored.Token())
	assert.Equal(t, ann, restored.User())
}

func TestUserReturnsCopy(t *testing.T) {
	db, _ := openDB(t)
	s := New(db)
	require.NoError(t, s.Start(context.Background(), "tok", ann))

	u := s.User()
	u.Name = "changed"
	assert.Equal(t, "Ann", s.User().Name)
}

func TestInvalidate(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()

	s := New(db)
	require.NoError(t, s.Start(ctx, "tok", ann))
	require.NoError(t, s.Invalidate(ctx))

	assert.False(t, s.Active())
	assert.Nil(t, s.User())

	restored := New(db)
	require.NoError(t, restored.Load(ctx))
	assert.False(t, restored.Active())
}

func TestLoad_CorruptUserClearsSession(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()

	repo := metadata.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, keyToken, []byte("tok")))
	require.NoError(t, repo.Set(ctx, keyUser, []byte("{not json")))

	s := New(db)
	require.NoError(t, s.Load(ctx))
	assert.False(t, s.Active())

	v, err := repo.Get(ctx, keyToken)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStart_RequiresTokenAndUser(t *testing.T) {
	db, _ := openDB(t)
	s := New(db)

	assert.Error(t, s.Start(context.Background(), "", ann))
	assert.Error(t, s.Start(context.Background(), "tok", nil))
}

type failingRepo struct {
	metadata.Repository
}

func (failingRepo) Set(context.Context, string, []byte) error { return errors.New("disk full") }
func (failingRepo) Delete(context.Context, string) error      { return errors.New("disk full") }

func TestStart_StoreFailureKeepsSessionInactive(t *testing.T) {
	db, _ := openDB(t)
	prev := newMetadataRepo
	newMetadataRepo = func(dbx.DBTX) metadata.Repository { return failingRepo{} }
	t.Cleanup(func() { newMetadataRepo = prev })

	s := New(db)
	require.Error(t, s.Start(context.Background(), "tok", ann))
	assert.False(t, s.Active())
}

func TestInvalidate_ClearsMemoryEvenOnStoreFailure(t *testing.T) {
	db, _ := openDB(t)
	s := New(db)
	require.NoError(t, s.Start(context.Background(), "tok", ann))

	prev := newMetadataRepo
	newMetadataRepo = func(dbx.DBTX) metadata.Repository { return failingRepo{} }
	t.Cleanup(func() { newMetadataRepo = prev })

	require.Error(t, s.Invalidate(context.Background()))
	assert.False(t, s.Active())
}
