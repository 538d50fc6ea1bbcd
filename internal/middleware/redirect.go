package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Redirector maps a request target from the inactive address shape onto the
// active one. *router.Router satisfies it.
type Redirector interface {
	RedirectIfCrossMode(ctx context.Context, target string) (string, bool)
}

// NewCrossModeRedirect returns a middleware that answers GET and HEAD requests
// for the inactive mode's addresses with 301 Moved Permanently. Query
// parameters other than the search term are carried over.
func NewCrossModeRedirect(rd Redirector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			dest, ok := rd.RedirectIfCrossMode(r.Context(), r.URL.RequestURI())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, withQuery(dest, r.URL.Query()), http.StatusMovedPermanently)
		})
	}
}

// withQuery appends q, minus the search term the router already consumed,
// to a destination that carries no query of its own.
func withQuery(dest string, q url.Values) string {
	if strings.Contains(dest, "?") {
		return dest
	}
	q.Del("s")
	if len(q) == 0 {
		return dest
	}
	return dest + "?" + q.Encode()
}
