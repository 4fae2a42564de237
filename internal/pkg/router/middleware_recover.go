package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/stacktrace"
)

// middlewareRecoverer converts handler panics into a JSON 500 and logs the
// repo-local frames. http.ErrAbortHandler is re-raised since the server uses
// it to abort the connection on purpose.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler { //nolint:err113,errorlint // sentinel comparison
				panic(rvr)
			}

			if paths := stacktrace.InternalPaths(debug.Stack()); len(paths) > 0 {
				slog.ErrorContext(r.Context(), "panic on the server", "because", rvr, "stack", paths)
			} else {
				slog.ErrorContext(r.Context(), "panic on the server trace debug", "because", rvr, "stack", string(debug.Stack()))
			}

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			if r.Header.Get("Connection") != "Upgrade" {
				w.WriteHeader(http.StatusInternalServerError)
			}
			//nolint:errcheck,errchkjson // best effort, response may be gone
			json.NewEncoder(w).Encode(map[string]string{"message": "Internal server error"})
		}()

		next.ServeHTTP(w, r)
	})
}
