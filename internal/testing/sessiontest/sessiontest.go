// Package sessiontest builds signed-in request contexts for handler tests.
package sessiontest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/shared"
	_ "github.com/artstock/console/testing"
)

// Password unlocks every demo account returned by Directory.
const Password = "artstock-demo"

// Demo account emails.
const (
	SuperAdmin = "superadmin@artstock.demo"
	Admin      = "admin@artstock.demo"
	User       = "user@artstock.demo"
)

var (
	hashOnce sync.Once
	hash     string
	hashErr  error
)

// Repository returns the demo accounts, all unlocked by Password.
func Repository(t testing.TB) *auth.MemoryRepository {
	t.Helper()
	hashOnce.Do(func() {
		hash, hashErr = auth.HashPassword(Password, bcrypt.MinCost)
	})
	require.NoError(t, hashErr)
	return auth.NewMemoryRepository(auth.DemoAccounts(hash))
}

// Directory returns an authenticator over the demo accounts.
func Directory(t testing.TB) *auth.Service {
	t.Helper()
	return auth.NewService(Repository(t))
}

// Anonymous returns an empty browser session with an initialised store.
func Anonymous(t testing.TB) (*shared.Session, *auth.Store) {
	t.Helper()
	sess := &shared.Session{ID: "test-session"}
	store := auth.NewStore(sess, audit.NewSink(sess), Directory(t))
	require.NoError(t, store.Init(context.Background()))
	return sess, store
}

// SignedIn returns a session whose store is signed in as email.
func SignedIn(t testing.TB, email string) (*shared.Session, *auth.Store) {
	t.Helper()
	sess, store := Anonymous(t)
	_, err := store.SignIn(context.Background(), auth.Credentials{Identifier: email, Secret: Password}, "")
	require.NoError(t, err)
	return sess, store
}

// WithContext attaches sess and store to req.
func WithContext(req *http.Request, sess *shared.Session, store *auth.Store) *http.Request {
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = auth.ContextWithStore(ctx, store)
	return req.WithContext(ctx)
}

// Serve runs req through h with sess and store in its context.
func Serve(h http.Handler, req *http.Request, sess *shared.Session, store *auth.Store) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, WithContext(req, sess, store))
	return rr
}

// PostForm builds a form-encoded POST request.
func PostForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// Entries returns the audit log stored in sess.
func Entries(t testing.TB, sess *shared.Session) []audit.Entry {
	t.Helper()
	entries, err := audit.NewSink(sess).Query(context.Background())
	require.NoError(t, err)
	return entries
}
