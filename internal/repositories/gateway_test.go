package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/notify"
)

func adminCtx() context.Context {
	return domain.WithPrincipal(context.Background(),
		&domain.Principal{ID: "u-admin", Role: domain.RoleAdmin})
}

func memberCtx(id string) context.Context {
	return domain.WithPrincipal(context.Background(),
		&domain.Principal{ID: id, Role: domain.RoleMember})
}

func customerCols() []string {
	return []string{"id", "active", "owner_id", "created_at", "updated_at", "name", "email", "mobile", "address"}
}

func customerRow(mock sqlmock.Sqlmock, id, name, email string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(customerCols()).
		AddRow(id, true, "u-1", now, now, name, email, "11999999999", "")
}

func TestListAdminNoFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewCustomerGateway(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT .* FROM customers ORDER BY name ASC LIMIT \\? OFFSET \\?").
		WithArgs(5, 5).
		WillReturnRows(customerRow(mock, "c-1", "Ana", "ana@x.com"))

	page, err := gw.List(adminCtx(), listing.Query{Page: 2, PageSize: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 12 || len(page.Rows) != 1 || page.Rows[0].Name != "Ana" {
		t.Fatalf("página inesperada: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListSearchIsCaseInsensitiveOr(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewCustomerGateway(db, nil)

	wantWhere := regexp.QuoteMeta("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(mobile) LIKE ?)")
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM customers WHERE " + wantWhere).
		WithArgs("%an%", "%an%", "%an%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .* FROM customers WHERE " + wantWhere + " ORDER BY name ASC").
		WithArgs("%an%", "%an%", "%an%", 10, 0).
		WillReturnRows(customerRow(mock, "c-1", "Ana", "ana@x.com"))

	page, err := gw.List(adminCtx(), listing.Query{Page: 1, PageSize: 10, Search: "AN"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Rows) != 1 || page.Rows[0].Name != "Ana" {
		t.Fatalf("busca errada: %+v", page.Rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListMemberGetsVisibilityFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewCustomerGateway(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers WHERE active = 1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT .* FROM customers WHERE active = 1 ORDER BY name ASC").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(customerCols()))

	page, err := gw.List(memberCtx("u-1"), listing.Query{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 0 || len(page.Rows) != 0 {
		t.Fatalf("página inesperada: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertStampsOwnerAndNotifies(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	hub := notify.NewHub()
	ch, unsub, _ := hub.Subscribe(context.Background(), "customers")
	defer unsub()

	gw := NewCustomerGateway(db, hub)

	mock.ExpectExec("INSERT INTO customers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM customers WHERE id = \\?").
		WillReturnRows(customerRow(mock, "c-1", "Ana", "ana@x.com"))

	saved, err := gw.Insert(memberCtx("u-1"), domain.Customer{
		Meta:   domain.Meta{Active: true},
		Name:   "Ana",
		Email:  "ana@x.com",
		Mobile: "11999999999",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.OwnerID != "u-1" {
		t.Fatalf("owner não carimbado: %q", saved.OwnerID)
	}

	select {
	case c := <-ch:
		if c.Kind != listing.ChangeInsert {
			t.Fatalf("tipo de mudança errado: %v", c.Kind)
		}
	case <-time.After(time.Second):
		t.Fatalf("insert não publicou mudança")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertWithoutPrincipalDenied(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewCustomerGateway(db, nil)
	_, err = gw.Insert(context.Background(), domain.Customer{Name: "Ana"})
	if !domain.IsPermissionDenied(err) {
		t.Fatalf("esperava negação, got %v", err)
	}
}

func TestMemberMutationCarriesOwnerGuard(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewCustomerGateway(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers SET active = ?, updated_at = ? WHERE id = ? AND (owner_id = ? OR owner_id = '')")).
		WithArgs(false, sqlmock.AnyArg(), "c-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM customers WHERE id = \\?").
		WillReturnRows(customerRow(mock, "c-1", "Ana", "ana@x.com"))

	if _, err := gw.SetActive(memberCtx("u-1"), "c-1", false); err != nil {
		t.Fatalf("setActive: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestZeroRowsOnExistingRecordIsPermissionDenied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewCustomerGateway(db, nil)

	mock.ExpectExec("UPDATE customers SET active").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers WHERE id = ?")).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err = gw.SetActive(memberCtx("u-2"), "c-1", false)
	if !domain.IsPermissionDenied(err) {
		t.Fatalf("esperava negação de permissão, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestZeroRowsOnMissingRecordIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewCustomerGateway(db, nil)

	mock.ExpectExec("DELETE FROM customers").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers WHERE id = ?")).
		WithArgs("zzz").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err = gw.Delete(adminCtx(), "zzz")
	if !domain.IsNotFound(err) {
		t.Fatalf("esperava não-encontrado, got %v", err)
	}
}

func TestAdminMutationHasNoGuard(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	hub := notify.NewHub()
	ch, unsub, _ := hub.Subscribe(context.Background(), "customers")
	defer unsub()

	gw := NewCustomerGateway(db, hub)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = ?")).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := gw.Delete(adminCtx(), "c-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	select {
	case c := <-ch:
		if c.Kind != listing.ChangeDelete {
			t.Fatalf("tipo de mudança errado: %v", c.Kind)
		}
	case <-time.After(time.Second):
		t.Fatalf("delete não publicou mudança")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSettleOnlyForSettleableEntities(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	customers := NewCustomerGateway(db, nil)
	if _, err := customers.Settle(adminCtx(), "c-1", time.Now()); err != listing.ErrNotSettleable {
		t.Fatalf("cliente não deveria ter baixa, got %v", err)
	}

	receivables := NewReceivableGateway(db, nil)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE receivables SET received_at = ?, updated_at = ? WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM receivables r LEFT JOIN customers c ON c.id = r.customer_id WHERE r.id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "active", "owner_id", "created_at", "updated_at", "description", "customer_id", "amount_centavos", "due_date", "received_at"}).
			AddRow("r-1", true, "u-1", now, now, "Banho e tosa", "c-1", 9900, now, now))

	rec, err := receivables.Settle(adminCtx(), "r-1", now)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !rec.Settled() {
		t.Fatalf("received_at não aplicado")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func userRows(owner, role string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "active", "owner_id", "created_at", "updated_at", "name", "username", "email", "phone", "role", "password_hash"}).
		AddRow("u-1", true, owner, now, now, "Ana", "ana", "ana@x.com", "", role, "$2a$10$hash")
}

func TestUserUpdatePreservesPasswordHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewUserGateway(db, nil)

	// the PUT body binds PasswordHash empty (json:"-"); the UPDATE must not
	// carry a password_hash column at all
	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\?").
		WillReturnRows(userRows("u-1", "member"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = ?, username = ?, email = ?, phone = ?, role = ?, active = ?, updated_at = ? WHERE id = ?")).
		WithArgs("Ana Maria", "ana", "ana@x.com", "", "member", true, sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\?").
		WillReturnRows(userRows("u-1", "member"))

	saved, err := gw.Update(adminCtx(), "u-1", domain.User{
		Meta:     domain.Meta{Active: true},
		Name:     "Ana Maria",
		Username: "ana",
		Email:    "ana@x.com",
		Role:     "member",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.PasswordHash != "$2a$10$hash" {
		t.Fatalf("hash de senha perdido na edição: %q", saved.PasswordHash)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemberCannotChangeOwnRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewUserGateway(db, nil)

	// the member owns their own users row, so the ownership guard alone would
	// pass; no UPDATE may run
	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\?").
		WillReturnRows(userRows("u-1", "member"))

	_, err = gw.Update(memberCtx("u-1"), "u-1", domain.User{
		Meta:     domain.Meta{Active: true},
		Name:     "Ana",
		Username: "ana",
		Email:    "ana@x.com",
		Role:     domain.RoleAdmin,
	})
	if !domain.IsPermissionDenied(err) {
		t.Fatalf("esperava negação de permissão, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("UPDATE executado apesar da negação: %v", err)
	}
}

func TestAdminCanChangeRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	gw := NewUserGateway(db, nil)

	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\?").
		WillReturnRows(userRows("u-1", "member"))
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM users WHERE id = \\?").
		WillReturnRows(userRows("u-1", "admin"))

	saved, err := gw.Update(adminCtx(), "u-1", domain.User{
		Meta:     domain.Meta{Active: true},
		Name:     "Ana",
		Username: "ana",
		Email:    "ana@x.com",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.Role != domain.RoleAdmin {
		t.Fatalf("perfil não atualizado: %q", saved.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindUserByLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .* FROM users WHERE email = \\? OR username = \\?").
		WithArgs("ana@x.com", "ana@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "active", "owner_id", "created_at", "updated_at", "name", "username", "email", "phone", "role", "password_hash"}).
			AddRow("u-1", true, "", now, now, "Ana", "ana", "ana@x.com", "", "member", "$2a$10$hash"))

	u, err := FindUserByLogin(context.Background(), db, "ana@x.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.Username != "ana" || u.Role != domain.RoleMember {
		t.Fatalf("usuário errado: %+v", u)
	}

	mock.ExpectQuery("SELECT .* FROM users WHERE email = \\? OR username = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := FindUserByLogin(context.Background(), db, "nao@x.com"); !domain.IsNotFound(err) {
		t.Fatalf("esperava não-encontrado, got %v", err)
	}
}
