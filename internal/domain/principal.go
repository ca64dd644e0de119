package domain

import "context"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Principal is the authenticated user attached to every request/session.
type Principal struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Owned is anything carrying an owner reference.
type Owned interface {
	Owner() string
}

// CanMutate is the single authorization policy shared by every controller and
// enforced again by the store: admins mutate anything, members only their own
// records. Records without an owner are mutable by any authenticated user.
// A nil principal (auth state unresolved or signed out) can mutate nothing.
func CanMutate(p *Principal, rec Owned) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	owner := rec.Owner()
	return owner == "" || owner == p.ID
}

type principalKey struct{}

// WithPrincipal attaches the request's principal to the context for the
// repository layer to enforce ownership with.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the attached principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
