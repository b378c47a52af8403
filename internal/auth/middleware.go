package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/artstock/console/internal/audit"
	"github.com/artstock/console/internal/shared"
)

// Binder attaches a Store over the browser session to every request.
type Binder struct {
	Authenticator Authenticator
	Logger        *slog.Logger
	Now           func() time.Time
}

// Middleware loads the store before the handler and disposes it afterwards.
// Requests without a browser session proceed without a store.
func (b Binder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		sink := audit.NewSink(sess)
		if b.Now != nil {
			sink.WithClock(b.Now)
		}
		store := NewStore(sess, sink, b.Authenticator, WithLogger(b.Logger), WithClock(b.Now))
		if err := store.Init(r.Context()); err != nil {
			if b.Logger != nil {
				b.Logger.Error("init session store", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer store.Dispose()
		next.ServeHTTP(w, r.WithContext(ContextWithStore(r.Context(), store)))
	})
}
