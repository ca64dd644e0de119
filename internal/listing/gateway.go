package listing

import (
	"context"
	"errors"
	"time"
)

// Record is the shared shape every listed entity satisfies (domain.Meta
// provides it).
type Record interface {
	RecordID() string
	IsActive() bool
	Owner() string
}

// ErrNotSettleable is returned by gateways whose entity has no settled-at
// semantics.
var ErrNotSettleable = errors.New("entidade não possui baixa/recebimento")

// Gateway is the query/mutate interface a list controller drives. Mutations
// return the server's row so reconciliation is read-modify-write, never a
// blind local flip. Implementations enforce the ownership policy themselves;
// a denied mutation surfaces as domain.PermissionDeniedError.
type Gateway[T Record] interface {
	List(ctx context.Context, q Query) (Page[T], error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, id string, row T) (T, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (T, error)
	Settle(ctx context.Context, id string, at time.Time) (T, error)
}

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change is a realtime notification that something in a collection changed.
// There is no payload: consumers reload with their current query state.
type Change struct {
	Kind       ChangeKind `json:"kind"`
	Collection string     `json:"collection"`
}

// Subscriber delivers change notifications for a collection until the context
// is cancelled. The returned func tears the subscription down.
type Subscriber interface {
	Subscribe(ctx context.Context, collection string) (<-chan Change, func(), error)
}
