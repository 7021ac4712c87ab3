package httpapi

import (
	"context"
)

type principalKeyType struct{}

var principalKey = principalKeyType{}

// Permissions are granted per api key. Searching and reading history are
// separate grants from recording views so that read-only analytics keys
// cannot inflate the popularity signal.
const (
	PermCanSearch = "can_search"
	PermCanView   = "can_view"
	PermCanUpload = "can_upload"
	PermCanUpdate = "can_update"
	PermCanDelete = "can_delete"
)

var knownPermissions = map[string]struct{}{
	PermCanSearch: {},
	PermCanView:   {},
	PermCanUpload: {},
	PermCanUpdate: {},
	PermCanDelete: {},
}

// KnownPermission reports whether perm is one of the grants this service
// understands. Key loading rejects anything else.
func KnownPermission(perm string) bool {
	_, ok := knownPermissions[perm]
	return ok
}

type Principal struct {
	ID          string
	Permissions map[string]struct{}
	Source      string
}

func newPrincipalFromAPIKey(key *APIKey) *Principal {
	perms := make(map[string]struct{}, len(key.Permissions))
	for _, p := range key.Permissions {
		perms[p] = struct{}{}
	}
	return &Principal{
		ID:          key.ID,
		Permissions: perms,
		Source:      "apikey",
	}
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

func (p *Principal) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Permissions[perm]
	return ok
}
