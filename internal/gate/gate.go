// internal/gate/gate.go
//
// Admin session gate.
//
// Context
// -------
// The gate guards the admin console.  Each protected-route entry runs the
// same short state machine, re-entered fresh per request, with CHECKING as
// the implicit in-flight state and two terminal outcomes:
//
//	CHECKING ──(off-domain)───────────────▶ DENIED  (redirect /, no verify call)
//	CHECKING ──(no stored token)──────────▶ DENIED  (redirect /admin-login)
//	CHECKING ──(verify fails / times out)─▶ DENIED  (clear session, redirect /admin-login)
//	CHECKING ──(verify succeeds)──────────▶ AUTHORIZED (serve console)
//
// Two properties matter and both are deliberate:
//
//   - Off the admin domain, the gate denies synchronously without touching
//     the verifier.  A public tenant host never leaks even a loading state
//     for the admin surface; its denial is a plain redirect home, i.e.
//     indistinguishable from a page that does not exist.
//   - Verification is always remote and always re-run.  A locally present
//     token is not "authenticated"; revocation must be observable.  Any
//     verification error—rejection, DB trouble, timeout—fails closed.  The
//     error case is counted separately (gate_verify_errors_total) so a
//     flapping backend shows up in metrics rather than in access grants.
//
// The verification carries an explicit timeout so a hung backend can never
// wedge a request in CHECKING.
package gate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/auth"
	"github.com/guncelgiris/platform/internal/metrics"
	"github.com/guncelgiris/platform/internal/tenant"
)

// State is the outcome of one gate evaluation.
type State int

const (
	Checking State = iota
	Authorized
	Denied
)

// Verifier is the remote session check.  *auth.Service satisfies it.
type Verifier interface {
	Verify(ctx context.Context, token string) (username string, err error)
}

// Gate wraps protected handlers.  Zero value is invalid; use New.
type Gate struct {
	verifier Verifier
	timeout  time.Duration
}

// New constructs a Gate.  timeout bounds each verification call; values
// <= 0 fall back to 3 s.
func New(v Verifier, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Gate{verifier: v, timeout: timeout}
}

// Protect returns middleware enforcing the state machine above.  It
// expects the tenant resolver middleware to have stored classification
// flags in the request context; a missing context is treated as a public
// host (fail-closed).
func (g *Gate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flags, ok := tenant.FlagsFromContext(r.Context())
		if !ok || !flags.IsAdminDomain {
			// Deny without a verifier round trip; mimic a nonexistent page.
			metrics.GateDeniedTotal.WithLabelValues("domain").Inc()
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}

		token, ok := auth.TokenFromRequest(r)
		if !ok {
			metrics.GateDeniedTotal.WithLabelValues("no_token").Inc()
			http.Redirect(w, r, "/admin-login", http.StatusTemporaryRedirect)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
		defer cancel()

		username, err := g.verifier.Verify(ctx, token)
		if err != nil {
			if !errors.Is(err, auth.ErrTokenInvalid) {
				// Unreachable backend or timeout, not a rejection.  Denied
				// either way, but visible as its own signal.
				metrics.GateVerifyErrorsTotal.Inc()
				zap.S().Warnw("gate verify error", "host", flags.Hostname, "err", err)
			}
			metrics.GateDeniedTotal.WithLabelValues("verify_failed").Inc()
			auth.ClearSession(w)
			http.Redirect(w, r, "/admin-login", http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), username)))
	})
}

// ProtectAPI is Protect for JSON surfaces: the same state machine, but
// denials answer with status codes instead of redirects so XHR callers
// can react.  Off-domain requests get 404, not 401; the admin API should
// not exist as far as a public tenant host is concerned.
func (g *Gate) ProtectAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flags, ok := tenant.FlagsFromContext(r.Context())
		if !ok || !flags.IsAdminDomain {
			metrics.GateDeniedTotal.WithLabelValues("domain").Inc()
			http.NotFound(w, r)
			return
		}

		token, ok := auth.TokenFromRequest(r)
		if !ok {
			metrics.GateDeniedTotal.WithLabelValues("no_token").Inc()
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
		defer cancel()

		username, err := g.verifier.Verify(ctx, token)
		if err != nil {
			if !errors.Is(err, auth.ErrTokenInvalid) {
				metrics.GateVerifyErrorsTotal.Inc()
				zap.S().Warnw("gate verify error", "host", flags.Hostname, "err", err)
			}
			metrics.GateDeniedTotal.WithLabelValues("verify_failed").Inc()
			auth.ClearSession(w)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), username)))
	})
}
