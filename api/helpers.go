package api

import (
	"context"
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/azguard"
	"github.com/xraph/azguard/store"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, azguard.ErrInvalidParameter) || errors.Is(err, azguard.ErrInvalidBizRule) {
		return forge.BadRequest(err.Error())
	}
	if isConflict(err) {
		return forge.BadRequest(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, azguard.ErrPrincipalNotFound) ||
		errors.Is(err, azguard.ErrRoleNotFound) ||
		errors.Is(err, azguard.ErrOperationNotFound) ||
		errors.Is(err, azguard.ErrTaskNotFound) ||
		errors.Is(err, azguard.ErrScopeNotFound) ||
		errors.Is(err, store.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, azguard.ErrRoleExists) ||
		errors.Is(err, azguard.ErrRolePopulated) ||
		errors.Is(err, azguard.ErrOperationExists) ||
		errors.Is(err, azguard.ErrTaskExists) ||
		errors.Is(err, azguard.ErrScopeExists) ||
		errors.Is(err, store.ErrDuplicate)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

// checkContext narrows ctx to the requested scope and attaches the
// client parameters the caller reported for its user.
func checkContext(ctx context.Context, scope *string, client ClientParams) context.Context {
	if scope != nil {
		ctx = azguard.WithScope(ctx, *scope)
	}
	if client.IP != "" || client.Secure {
		ctx = azguard.WithParams(ctx, azguard.NewParams(client.IP, client.Secure))
	}
	return ctx
}

// optionalScope returns nil for an absent scope so the configured scope
// applies. "-" selects the application level explicitly.
func optionalScope(scope string) *string {
	switch scope {
	case "":
		return nil
	case "-":
		empty := ""
		return &empty
	default:
		return &scope
	}
}
