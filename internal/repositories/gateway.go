// Package repositories implements the data gateway over MySQL. One generic
// SQLGateway parameterized by a TableSpec serves every entity; the per-entity
// specs live in entities.go. Ownership is enforced in the mutation SQL itself:
// a member's UPDATE/DELETE carries an owner guard, and zero rows affected on
// an existing record is a permission denial.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/notify"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/utils"

	"github.com/google/uuid"
)

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// TableSpec configures the generic gateway for one entity.
type TableSpec[T listing.Record] struct {
	// Collection is the public name used in change notifications.
	Collection string
	// Table receives mutations.
	Table string
	// From is the SELECT source, Table plus joins when list rows carry
	// denormalized names. Defaults to Table.
	From string
	// SelectCols are the projected columns in Scan order.
	SelectCols []string
	// SearchCols are OR-ed with case-insensitive LIKE for the search text.
	SearchCols []string
	// OrderBy is the entity's fixed natural order.
	OrderBy string
	// MemberFilter, when non-empty, restricts what non-admin principals see
	// (e.g. "active = 1" or "received_at IS NULL").
	MemberFilter string
	// SettleCol, when non-empty, names the settled-at timestamp column.
	SettleCol string
	// Scan materializes one projected row.
	Scan func(RowScanner) (T, error)
	// UpdateCols lists the mutable domain columns and values for row.
	UpdateCols func(row T) ([]string, []any)
	// InsertCols, when set, lists the columns written on insert; defaults to
	// UpdateCols. Entities with write-once columns (password hashes) keep them
	// out of UpdateCols and list them here.
	InsertCols func(row T) ([]string, []any)
	// UpdateGuard, when set, vets an update against the stored row before any
	// SQL runs.
	UpdateGuard func(p *domain.Principal, current, next T) error
	// ApplyMeta returns row with its meta replaced (used on insert).
	ApplyMeta func(row T, m domain.Meta) T
}

// SQLGateway implements listing.Gateway for one entity over *sql.DB,
// publishing a change notification after every committed mutation.
type SQLGateway[T listing.Record] struct {
	DB   *sql.DB
	Hub  *notify.Hub
	Spec TableSpec[T]
}

func (g *SQLGateway[T]) from() string {
	if g.Spec.From != "" {
		return g.Spec.From
	}
	return g.Spec.Table
}

func (g *SQLGateway[T]) idCol() string {
	if g.Spec.From != "" && g.Spec.From != g.Spec.Table {
		// joined FROM clauses qualify the base table's columns with its alias
		return tableAlias(g.Spec.From) + ".id"
	}
	return "id"
}

func tableAlias(from string) string {
	fields := strings.Fields(from)
	if len(fields) >= 2 {
		return fields[1]
	}
	return fields[0]
}

// List runs the filtered, ordered, paginated query plus the exact count.
func (g *SQLGateway[T]) List(ctx context.Context, q listing.Query) (listing.Page[T], error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = listing.DefaultPageSize
	}

	where, args := g.listWhere(ctx, q.Search)

	var total int
	countSQL := "SELECT COUNT(*) FROM " + g.from() + where
	if err := g.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return listing.Page[T]{}, domain.InternalError{Msg: "falha ao contar registros", Err: err}
	}

	listSQL := "SELECT " + strings.Join(g.Spec.SelectCols, ", ") +
		" FROM " + g.from() + where +
		" ORDER BY " + g.Spec.OrderBy +
		" LIMIT ? OFFSET ?"
	rows, err := g.DB.QueryContext(ctx, listSQL, append(args, q.PageSize, q.Offset())...)
	if err != nil {
		return listing.Page[T]{}, domain.InternalError{Msg: "falha ao listar registros", Err: err}
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := g.Spec.Scan(rows)
		if err != nil {
			return listing.Page[T]{}, domain.InternalError{Msg: "falha ao ler registro", Err: err}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return listing.Page[T]{}, domain.InternalError{Msg: "falha ao ler registros", Err: err}
	}
	return listing.Page[T]{Rows: out, TotalCount: total}, nil
}

func (g *SQLGateway[T]) listWhere(ctx context.Context, search string) (string, []any) {
	clauses := []string{}
	args := []any{}

	if search = strings.TrimSpace(search); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		likes := make([]string, 0, len(g.Spec.SearchCols))
		for _, col := range g.Spec.SearchCols {
			likes = append(likes, "LOWER("+col+") LIKE ?")
			args = append(args, needle)
		}
		clauses = append(clauses, "("+strings.Join(likes, " OR ")+")")
	}

	if g.Spec.MemberFilter != "" {
		p := domain.PrincipalFromContext(ctx)
		if p == nil || !p.IsAdmin() {
			clauses = append(clauses, g.Spec.MemberFilter)
		}
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Get fetches one row by id.
func (g *SQLGateway[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	query := "SELECT " + strings.Join(g.Spec.SelectCols, ", ") +
		" FROM " + g.from() + " WHERE " + g.idCol() + " = ? LIMIT 1"
	rec, err := g.Spec.Scan(g.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return zero, domain.NotFoundError{Resource: g.Spec.Collection}
		}
		return zero, domain.InternalError{Msg: "falha ao buscar registro", Err: err}
	}
	return rec, nil
}

// Insert stamps the meta (new id, owner from the context principal, active
// preserved from the row, timestamps) and persists.
func (g *SQLGateway[T]) Insert(ctx context.Context, row T) (T, error) {
	var zero T
	p := domain.PrincipalFromContext(ctx)
	if p == nil {
		return zero, domain.PermissionDeniedError{Resource: g.Spec.Collection}
	}

	now := utils.NowUTC()
	meta := domain.Meta{
		ID:        uuid.NewString(),
		Active:    row.IsActive(),
		OwnerID:   p.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	row = g.Spec.ApplyMeta(row, meta)

	insertCols := g.Spec.InsertCols
	if insertCols == nil {
		insertCols = g.Spec.UpdateCols
	}
	cols, vals := insertCols(row)
	cols = append([]string{"id", "active", "owner_id", "created_at", "updated_at"}, cols...)
	vals = append([]any{meta.ID, meta.Active, meta.OwnerID, meta.CreatedAt, meta.UpdatedAt}, vals...)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		g.Spec.Table, strings.Join(cols, ", "), placeholders)
	if _, err := g.DB.ExecContext(ctx, stmt, vals...); err != nil {
		return zero, domain.InternalError{Msg: "falha ao inserir registro", Err: err}
	}

	saved, err := g.Get(ctx, meta.ID)
	if err != nil {
		return zero, err
	}
	g.publish(listing.ChangeInsert)
	return saved, nil
}

// Update rewrites the mutable columns under the owner guard and returns the
// server row.
func (g *SQLGateway[T]) Update(ctx context.Context, id string, row T) (T, error) {
	if g.Spec.UpdateGuard != nil {
		var zero T
		current, err := g.Get(ctx, id)
		if err != nil {
			return zero, err
		}
		if err := g.Spec.UpdateGuard(domain.PrincipalFromContext(ctx), current, row); err != nil {
			return zero, err
		}
	}

	cols, vals := g.Spec.UpdateCols(row)
	cols = append(cols, "active", "updated_at")
	vals = append(vals, row.IsActive(), utils.NowUTC())

	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}
	if err := g.guardedExec(ctx, id,
		"UPDATE "+g.Spec.Table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", vals); err != nil {
		var zero T
		return zero, err
	}

	saved, err := g.Get(ctx, id)
	if err != nil {
		return saved, err
	}
	g.publish(listing.ChangeUpdate)
	return saved, nil
}

// Delete removes the row under the owner guard.
func (g *SQLGateway[T]) Delete(ctx context.Context, id string) error {
	if err := g.guardedExec(ctx, id,
		"DELETE FROM "+g.Spec.Table+" WHERE id = ?", nil); err != nil {
		return err
	}
	g.publish(listing.ChangeDelete)
	return nil
}

// SetActive flips the active flag under the owner guard and returns the
// server row.
func (g *SQLGateway[T]) SetActive(ctx context.Context, id string, active bool) (T, error) {
	var zero T
	if err := g.guardedExec(ctx, id,
		"UPDATE "+g.Spec.Table+" SET active = ?, updated_at = ? WHERE id = ?",
		[]any{active, utils.NowUTC()}); err != nil {
		return zero, err
	}
	saved, err := g.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	g.publish(listing.ChangeUpdate)
	return saved, nil
}

// Settle stamps the entity's settled-at column under the owner guard.
func (g *SQLGateway[T]) Settle(ctx context.Context, id string, at time.Time) (T, error) {
	var zero T
	if g.Spec.SettleCol == "" {
		return zero, listing.ErrNotSettleable
	}
	if err := g.guardedExec(ctx, id,
		"UPDATE "+g.Spec.Table+" SET "+g.Spec.SettleCol+" = ?, updated_at = ? WHERE id = ?",
		[]any{at.UTC(), utils.NowUTC()}); err != nil {
		return zero, err
	}
	saved, err := g.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	g.publish(listing.ChangeUpdate)
	return saved, nil
}

// guardedExec runs a mutation statement with the ownership guard appended.
// The trailing placeholder of stmt must be the record id. Zero rows affected
// on an existing record is normalized to a permission denial: the guard
// refuses silently instead of erroring.
func (g *SQLGateway[T]) guardedExec(ctx context.Context, id, stmt string, args []any) error {
	p := domain.PrincipalFromContext(ctx)
	if p == nil {
		return domain.PermissionDeniedError{Resource: g.Spec.Collection}
	}

	args = append(args, id)
	if !p.IsAdmin() {
		stmt += " AND (owner_id = ? OR owner_id = '')"
		args = append(args, p.ID)
	}

	res, err := g.DB.ExecContext(ctx, stmt, args...)
	if err != nil {
		return domain.InternalError{Msg: "falha ao gravar registro", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "falha ao gravar registro", Err: err}
	}
	if n == 0 {
		var exists int
		probe := "SELECT COUNT(*) FROM " + g.Spec.Table + " WHERE id = ?"
		if err := g.DB.QueryRowContext(ctx, probe, id).Scan(&exists); err == nil && exists == 0 {
			return domain.NotFoundError{Resource: g.Spec.Collection}
		}
		return domain.PermissionDeniedError{Resource: g.Spec.Collection}
	}
	return nil
}

func (g *SQLGateway[T]) publish(kind listing.ChangeKind) {
	if g.Hub != nil {
		g.Hub.Publish(listing.Change{Kind: kind, Collection: g.Spec.Collection})
	}
}
