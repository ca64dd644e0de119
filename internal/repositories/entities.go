package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/notify"
)

// Per-entity gateway specs. The searchable fields, natural order and member
// visibility of each list screen live here, nowhere else.

func NewCustomerGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.Customer] {
	return &SQLGateway[domain.Customer]{DB: db, Hub: hub, Spec: TableSpec[domain.Customer]{
		Collection:   "customers",
		Table:        "customers",
		SelectCols:   []string{"id", "active", "COALESCE(owner_id,'')", "created_at", "updated_at", "name", "COALESCE(email,'')", "COALESCE(mobile,'')", "COALESCE(address,'')"},
		SearchCols:   []string{"name", "email", "mobile"},
		OrderBy:      "name ASC",
		MemberFilter: "active = 1",
		Scan: func(r RowScanner) (domain.Customer, error) {
			var c domain.Customer
			err := r.Scan(&c.ID, &c.Active, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt,
				&c.Name, &c.Email, &c.Mobile, &c.Address)
			return c, err
		},
		UpdateCols: func(c domain.Customer) ([]string, []any) {
			return []string{"name", "email", "mobile", "address"},
				[]any{c.Name, c.Email, c.Mobile, c.Address}
		},
		ApplyMeta: func(c domain.Customer, m domain.Meta) domain.Customer { c.Meta = m; return c },
	}}
}

func NewCompanyGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.Company] {
	return &SQLGateway[domain.Company]{DB: db, Hub: hub, Spec: TableSpec[domain.Company]{
		Collection:   "companies",
		Table:        "companies",
		SelectCols:   []string{"id", "active", "COALESCE(owner_id,'')", "created_at", "updated_at", "name", "COALESCE(email,'')", "COALESCE(mobile,'')", "COALESCE(address,'')"},
		SearchCols:   []string{"name", "email"},
		OrderBy:      "name ASC",
		MemberFilter: "active = 1",
		Scan: func(r RowScanner) (domain.Company, error) {
			var c domain.Company
			err := r.Scan(&c.ID, &c.Active, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt,
				&c.Name, &c.Email, &c.Mobile, &c.Address)
			return c, err
		},
		UpdateCols: func(c domain.Company) ([]string, []any) {
			return []string{"name", "email", "mobile", "address"},
				[]any{c.Name, c.Email, c.Mobile, c.Address}
		},
		ApplyMeta: func(c domain.Company, m domain.Meta) domain.Company { c.Meta = m; return c },
	}}
}

func NewProductGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.Product] {
	return &SQLGateway[domain.Product]{DB: db, Hub: hub, Spec: TableSpec[domain.Product]{
		Collection:   "products",
		Table:        "products",
		SelectCols:   []string{"id", "active", "COALESCE(owner_id,'')", "created_at", "updated_at", "name", "COALESCE(description,'')", "price_centavos", "COALESCE(company_id,'')"},
		SearchCols:   []string{"name", "description"},
		OrderBy:      "name ASC",
		MemberFilter: "active = 1",
		Scan: func(r RowScanner) (domain.Product, error) {
			var p domain.Product
			err := r.Scan(&p.ID, &p.Active, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
				&p.Name, &p.Description, &p.PriceCentavos, &p.CompanyID)
			return p, err
		},
		UpdateCols: func(p domain.Product) ([]string, []any) {
			return []string{"name", "description", "price_centavos", "company_id"},
				[]any{p.Name, p.Description, p.PriceCentavos, p.CompanyID}
		},
		ApplyMeta: func(p domain.Product, m domain.Meta) domain.Product { p.Meta = m; return p },
	}}
}

func NewExpenseTypeGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.ExpenseType] {
	return &SQLGateway[domain.ExpenseType]{DB: db, Hub: hub, Spec: TableSpec[domain.ExpenseType]{
		Collection:   "expense_types",
		Table:        "expense_types",
		SelectCols:   []string{"id", "active", "COALESCE(owner_id,'')", "created_at", "updated_at", "name", "COALESCE(description,'')"},
		SearchCols:   []string{"name", "description"},
		OrderBy:      "name ASC",
		MemberFilter: "active = 1",
		Scan: func(r RowScanner) (domain.ExpenseType, error) {
			var e domain.ExpenseType
			err := r.Scan(&e.ID, &e.Active, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
				&e.Name, &e.Description)
			return e, err
		},
		UpdateCols: func(e domain.ExpenseType) ([]string, []any) {
			return []string{"name", "description"}, []any{e.Name, e.Description}
		},
		ApplyMeta: func(e domain.ExpenseType, m domain.Meta) domain.ExpenseType { e.Meta = m; return e },
	}}
}

func NewExpenseGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.Expense] {
	return &SQLGateway[domain.Expense]{DB: db, Hub: hub, Spec: TableSpec[domain.Expense]{
		Collection:   "expenses",
		Table:        "expenses",
		SelectCols:   []string{"id", "active", "COALESCE(owner_id,'')", "created_at", "updated_at", "description", "COALESCE(expense_type_id,'')", "amount_centavos", "expense_date"},
		SearchCols:   []string{"description"},
		OrderBy:      "expense_date DESC",
		MemberFilter: "active = 1",
		Scan: func(r RowScanner) (domain.Expense, error) {
			var e domain.Expense
			err := r.Scan(&e.ID, &e.Active, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
				&e.Description, &e.ExpenseTypeID, &e.AmountCentavos, &e.ExpenseDate)
			return e, err
		},
		UpdateCols: func(e domain.Expense) ([]string, []any) {
			return []string{"description", "expense_type_id", "amount_centavos", "expense_date"},
				[]any{e.Description, e.ExpenseTypeID, e.AmountCentavos, e.ExpenseDate}
		},
		ApplyMeta: func(e domain.Expense, m domain.Meta) domain.Expense { e.Meta = m; return e },
	}}
}

func NewPaymentGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.Payment] {
	return &SQLGateway[domain.Payment]{DB: db, Hub: hub, Spec: TableSpec[domain.Payment]{
		Collection: "payments",
		Table:      "payments",
		SelectCols: []string{"id", "active", "COALESCE(owner_id,'')", "created_at", "updated_at", "description", "COALESCE(company_id,'')", "amount_centavos", "due_date", "paid_at"},
		SearchCols: []string{"description"},
		// open bills first, nearest due date on top
		OrderBy:      "(paid_at IS NULL) DESC, due_date ASC",
		MemberFilter: "paid_at IS NULL",
		SettleCol:    "paid_at",
		Scan:         scanPayment,
		UpdateCols: func(p domain.Payment) ([]string, []any) {
			return []string{"description", "company_id", "amount_centavos", "due_date"},
				[]any{p.Description, p.CompanyID, p.AmountCentavos, p.DueDate}
		},
		ApplyMeta: func(p domain.Payment, m domain.Meta) domain.Payment { p.Meta = m; return p },
	}}
}

func scanPayment(r RowScanner) (domain.Payment, error) {
	var p domain.Payment
	var paidAt sql.NullTime
	err := r.Scan(&p.ID, &p.Active, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
		&p.Description, &p.CompanyID, &p.AmountCentavos, &p.DueDate, &paidAt)
	if paidAt.Valid {
		t := paidAt.Time
		p.PaidAt = &t
	}
	return p, err
}

func NewReceivableGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.Receivable] {
	return &SQLGateway[domain.Receivable]{DB: db, Hub: hub, Spec: TableSpec[domain.Receivable]{
		Collection:   "receivables",
		Table:        "receivables",
		From:         "receivables r LEFT JOIN customers c ON c.id = r.customer_id",
		SelectCols:   []string{"r.id", "r.active", "COALESCE(r.owner_id,'')", "r.created_at", "r.updated_at", "r.description", "COALESCE(r.customer_id,'')", "r.amount_centavos", "r.due_date", "r.received_at"},
		SearchCols:   []string{"r.description", "c.name"},
		OrderBy:      "(r.received_at IS NULL) DESC, r.due_date ASC",
		MemberFilter: "r.received_at IS NULL",
		SettleCol:    "received_at",
		Scan:         scanReceivable,
		UpdateCols: func(r domain.Receivable) ([]string, []any) {
			return []string{"description", "customer_id", "amount_centavos", "due_date"},
				[]any{r.Description, r.CustomerID, r.AmountCentavos, r.DueDate}
		},
		ApplyMeta: func(r domain.Receivable, m domain.Meta) domain.Receivable { r.Meta = m; return r },
	}}
}

func scanReceivable(r RowScanner) (domain.Receivable, error) {
	var rec domain.Receivable
	var receivedAt sql.NullTime
	err := r.Scan(&rec.ID, &rec.Active, &rec.OwnerID, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.Description, &rec.CustomerID, &rec.AmountCentavos, &rec.DueDate, &receivedAt)
	if receivedAt.Valid {
		t := receivedAt.Time
		rec.ReceivedAt = &t
	}
	return rec, err
}

func NewSaleGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.Sale] {
	return &SQLGateway[domain.Sale]{DB: db, Hub: hub, Spec: TableSpec[domain.Sale]{
		Collection:   "sales",
		Table:        "sales",
		From:         "sales s LEFT JOIN customers c ON c.id = s.customer_id LEFT JOIN products p ON p.id = s.product_id",
		SelectCols:   []string{"s.id", "s.active", "COALESCE(s.owner_id,'')", "s.created_at", "s.updated_at", "COALESCE(s.customer_id,'')", "COALESCE(s.product_id,'')", "s.quantity", "s.total_centavos", "s.sale_date", "COALESCE(c.name,'')", "COALESCE(p.name,'')"},
		SearchCols:   []string{"c.name", "p.name"},
		OrderBy:      "s.sale_date DESC",
		MemberFilter: "s.active = 1",
		Scan: func(r RowScanner) (domain.Sale, error) {
			var s domain.Sale
			err := r.Scan(&s.ID, &s.Active, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt,
				&s.CustomerID, &s.ProductID, &s.Quantity, &s.TotalCentavos, &s.SaleDate,
				&s.CustomerName, &s.ProductName)
			return s, err
		},
		UpdateCols: func(s domain.Sale) ([]string, []any) {
			return []string{"customer_id", "product_id", "quantity", "total_centavos", "sale_date"},
				[]any{s.CustomerID, s.ProductID, s.Quantity, s.TotalCentavos, s.SaleDate}
		},
		ApplyMeta: func(s domain.Sale, m domain.Meta) domain.Sale { s.Meta = m; return s },
	}}
}

func NewUserGateway(db *sql.DB, hub *notify.Hub) *SQLGateway[domain.User] {
	return &SQLGateway[domain.User]{DB: db, Hub: hub, Spec: TableSpec[domain.User]{
		Collection: "users",
		Table:      "users",
		SelectCols: []string{"id", "active", "COALESCE(owner_id,'')", "created_at", "updated_at", "name", "username", "email", "COALESCE(phone,'')", "role", "password_hash"},
		SearchCols: []string{"name", "username", "email"},
		OrderBy:    "name ASC",
		Scan: func(r RowScanner) (domain.User, error) {
			var u domain.User
			err := r.Scan(&u.ID, &u.Active, &u.OwnerID, &u.CreatedAt, &u.UpdatedAt,
				&u.Name, &u.Username, &u.Email, &u.Phone, &u.Role, &u.PasswordHash)
			return u, err
		},
		// password_hash is write-once here: PasswordHash never travels in JSON,
		// so a PUT binds it empty and writing it would wipe the stored hash.
		// Password changes go through the reset-password flow only.
		UpdateCols: func(u domain.User) ([]string, []any) {
			return []string{"name", "username", "email", "phone", "role"},
				[]any{u.Name, u.Username, u.Email, u.Phone, u.Role}
		},
		InsertCols: func(u domain.User) ([]string, []any) {
			return []string{"name", "username", "email", "phone", "role", "password_hash"},
				[]any{u.Name, u.Username, u.Email, u.Phone, u.Role, u.PasswordHash}
		},
		// members own their users row, so the ownership guard alone would let
		// them rewrite their own role
		UpdateGuard: func(p *domain.Principal, current, next domain.User) error {
			if next.Role != current.Role && (p == nil || !p.IsAdmin()) {
				return domain.PermissionDeniedError{
					Resource: "users",
					Msg:      "apenas administradores podem alterar o perfil de acesso",
				}
			}
			return nil
		},
		ApplyMeta: func(u domain.User, m domain.Meta) domain.User { u.Meta = m; return u },
	}}
}

// FindUserByLogin looks a user up by email or username for authentication.
func FindUserByLogin(ctx context.Context, db *sql.DB, login string) (domain.User, error) {
	gw := NewUserGateway(db, nil)
	query := "SELECT " + strings.Join(gw.Spec.SelectCols, ", ") +
		" FROM users WHERE email = ? OR username = ? LIMIT 1"
	u, err := gw.Spec.Scan(db.QueryRowContext(ctx, query, login, login))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.NotFoundError{Resource: "usuário"}
		}
		return domain.User{}, domain.InternalError{Msg: "falha ao buscar usuário", Err: err}
	}
	return u, nil
}
