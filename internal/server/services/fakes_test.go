package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.User
	createErr error
	getErr    error
	created   []*models.User
}

func newFakeUsersRepo(existing ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{byEmail: map[string]*models.User{}}
	for _, u := range existing {
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.CreatedAt = time.Now()
	f.created = append(f.created, u)
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- tasks ---

type fakeTasksRepo struct {
	mu        sync.Mutex
	rows      map[string]models.Task
	createErr error
	updateErr error
	deleteErr error
	countOut  []*models.CompletedCount
	countErr  error
}

func newFakeTasksRepo(existing ...models.Task) *fakeTasksRepo {
	f := &fakeTasksRepo{rows: map[string]models.Task{}}
	for _, t := range existing {
		f.rows[t.ID] = t
	}
	return f
}

func (f *fakeTasksRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	f.rows[t.ID] = *t
	return t, nil
}

func (f *fakeTasksRepo) ListByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Task, 0)
	for _, t := range f.rows {
		if t.UserID == userID {
			c := t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTasksRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	cur, ok := f.rows[t.ID]
	if !ok || cur.UserID != t.UserID {
		return nil, common.ErrorNotFound
	}
	t.UpdatedAt = time.Now()
	f.rows[t.ID] = *t
	return t, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTasksRepo) CompletedCountByOwner(ctx context.Context) ([]*models.CompletedCount, error) {
	return f.countOut, f.countErr
}

// --- repo manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository           { return m.t }

// --- blobs ---

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
	putErr  error
	delErr  error
	deleted []string
	types   []string
}

func newFakeBlobStore(paths ...string) *fakeBlobStore {
	f := &fakeBlobStore{objects: map[string][]byte{}}
	for _, p := range paths {
		f.objects[p] = []byte("old")
	}
	return f
}

func (f *fakeBlobStore) Put(ctx context.Context, namespace, filename string, body io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	f.seq++
	p := fmt.Sprintf("%s/blob-%d-%s", namespace, f.seq, filename)
	f.objects[p] = buf.Bytes()
	f.types = append(f.types, contentType)
	return p, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, path)
	delete(f.objects, path)
	return nil
}

func (f *fakeBlobStore) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

// --- revocations ---

type fakeRevocations struct {
	revoked map[string]time.Time
	err     error
}

func (f *fakeRevocations) Revoke(ctx context.Context, id string, until time.Time) error {
	if f.err != nil {
		return f.err
	}
	if f.revoked == nil {
		f.revoked = map[string]time.Time{}
	}
	f.revoked[id] = until
	return nil
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[id]
	return ok, nil
}

var errBoom = errors.New("boom")

// file fixtures with real magic numbers
var (
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 64)...)
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
)

func file(name string, content []byte) *Attachment {
	return &Attachment{Filename: name, Size: int64(len(content)), Body: bytes.NewReader(content)}
}
