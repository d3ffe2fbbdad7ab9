// Package middleware provides HTTP authorization middleware for azguard.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/azguard"
)

// Requirement describes what a request's user must hold. Zero fields are
// not checked; a zero Requirement admits everyone.
type Requirement struct {
	// Authenticated requires a resolvable user.
	Authenticated bool
	// Operation names an operation the user must be granted.
	Operation string
	// Task names a task whose operations the user must all be granted.
	Task string
}

// Require enforces req. The user is the Forge user ID (from Authsome);
// the request's client address and transport feed business rules.
func Require(eng *azguard.Engine, req Requirement) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			if req == (Requirement{}) {
				return next(ctx)
			}
			p, err := evaluate(eng, ctx)
			if err != nil || !satisfies(p, req) {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireOperation is Require with only an operation requirement.
func RequireOperation(eng *azguard.Engine, operation string) forge.Middleware {
	return Require(eng, Requirement{Authenticated: true, Operation: operation})
}

// RequireTask is Require with only a task requirement.
func RequireTask(eng *azguard.Engine, task string) forge.Middleware {
	return Require(eng, Requirement{Authenticated: true, Task: task})
}

// evaluate builds the principal of the request's user. An anonymous
// request yields an unauthenticated principal without touching the store.
func evaluate(eng *azguard.Engine, ctx forge.Context) (*azguard.Principal, error) {
	userID := forge.UserIDFromContext(ctx.Context())
	if userID == "" {
		return azguard.NewPrincipal("", false, nil, nil, nil, false), nil
	}
	params := azguard.ParamsFromRequest(ctx.Request())
	return eng.Principal(ctx.Context(), userID, &params)
}

func satisfies(p *azguard.Principal, req Requirement) bool {
	if req.Authenticated && !p.IsAuthenticated() {
		return false
	}
	if req.Operation != "" && !p.HasRequiredOperation(req.Operation) {
		return false
	}
	if req.Task != "" && !p.HasRequiredTask(req.Task) {
		return false
	}
	return true
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(http.StatusForbidden)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
