package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Meta carries the fields shared by every stored record. OwnerID is stamped at
// creation with the creating principal and never changes afterwards.
type Meta struct {
	ID        string    `json:"id"`
	Active    bool      `json:"active"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m Meta) RecordID() string { return m.ID }
func (m Meta) IsActive() bool   { return m.Active }
func (m Meta) Owner() string    { return m.OwnerID }

type Customer struct {
	Meta
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	Address string `json:"address,omitempty"`
}

func (c Customer) Validate() error {
	return wrapValidation(validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required.Error("nome é obrigatório")),
		validation.Field(&c.Email, validation.Required.Error("email é obrigatório"), is.Email.Error("email inválido")),
		validation.Field(&c.Mobile, validation.Required.Error("celular é obrigatório")),
	))
}

type Company struct {
	Meta
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c Company) Validate() error {
	return wrapValidation(validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required.Error("nome é obrigatório")),
		validation.Field(&c.Email, is.Email.Error("email inválido")),
	))
}

type Product struct {
	Meta
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	PriceCentavos int64  `json:"priceCentavos"`
	CompanyID     string `json:"companyId"`
}

func (p Product) Validate() error {
	return wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required.Error("nome é obrigatório")),
		validation.Field(&p.PriceCentavos, validation.Required.Error("preço deve ser positivo"), validation.Min(int64(1)).Error("preço deve ser positivo")),
		validation.Field(&p.CompanyID, validation.Required.Error("fornecedor é obrigatório")),
	))
}

type ExpenseType struct {
	Meta
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (e ExpenseType) Validate() error {
	return wrapValidation(validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required.Error("nome é obrigatório")),
	))
}

type Expense struct {
	Meta
	Description    string    `json:"description"`
	ExpenseTypeID  string    `json:"expenseTypeId"`
	AmountCentavos int64     `json:"amountCentavos"`
	ExpenseDate    time.Time `json:"expenseDate"`
}

func (e Expense) Validate() error {
	return wrapValidation(validation.ValidateStruct(&e,
		validation.Field(&e.Description, validation.Required.Error("descrição é obrigatória")),
		validation.Field(&e.ExpenseTypeID, validation.Required.Error("tipo de despesa é obrigatório")),
		validation.Field(&e.AmountCentavos, validation.Required.Error("valor deve ser positivo"), validation.Min(int64(1)).Error("valor deve ser positivo")),
	))
}

// Payment is a "conta a pagar": an amount owed to a supplier company,
// settled when PaidAt is set.
type Payment struct {
	Meta
	Description    string     `json:"description"`
	CompanyID      string     `json:"companyId"`
	AmountCentavos int64      `json:"amountCentavos"`
	DueDate        time.Time  `json:"dueDate"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
}

func (p Payment) Validate() error {
	return wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Description, validation.Required.Error("descrição é obrigatória")),
		validation.Field(&p.CompanyID, validation.Required.Error("fornecedor é obrigatório")),
		validation.Field(&p.AmountCentavos, validation.Required.Error("valor deve ser positivo"), validation.Min(int64(1)).Error("valor deve ser positivo")),
		validation.Field(&p.DueDate, validation.Required.Error("vencimento é obrigatório")),
	))
}

func (p Payment) Settled() bool { return p.PaidAt != nil }

// Receivable is a "conta a receber": an amount owed by a customer, settled
// when ReceivedAt is set.
type Receivable struct {
	Meta
	Description    string     `json:"description"`
	CustomerID     string     `json:"customerId"`
	AmountCentavos int64      `json:"amountCentavos"`
	DueDate        time.Time  `json:"dueDate"`
	ReceivedAt     *time.Time `json:"receivedAt,omitempty"`
}

func (r Receivable) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.Required.Error("descrição é obrigatória")),
		validation.Field(&r.CustomerID, validation.Required.Error("cliente é obrigatório")),
		validation.Field(&r.AmountCentavos, validation.Required.Error("valor deve ser positivo"), validation.Min(int64(1)).Error("valor deve ser positivo")),
		validation.Field(&r.DueDate, validation.Required.Error("vencimento é obrigatório")),
	))
}

func (r Receivable) Settled() bool { return r.ReceivedAt != nil }

type Sale struct {
	Meta
	CustomerID    string    `json:"customerId"`
	ProductID     string    `json:"productId"`
	Quantity      int       `json:"quantity"`
	TotalCentavos int64     `json:"totalCentavos"`
	SaleDate      time.Time `json:"saleDate"`
	CustomerName  string    `json:"customerName,omitempty"`
	ProductName   string    `json:"productName,omitempty"`
}

func (s Sale) Validate() error {
	return wrapValidation(validation.ValidateStruct(&s,
		validation.Field(&s.CustomerID, validation.Required.Error("cliente é obrigatório")),
		validation.Field(&s.ProductID, validation.Required.Error("produto é obrigatório")),
		validation.Field(&s.Quantity, validation.Required.Error("quantidade deve ser positiva"), validation.Min(1).Error("quantidade deve ser positiva")),
		validation.Field(&s.TotalCentavos, validation.Required.Error("total deve ser positivo"), validation.Min(int64(1)).Error("total deve ser positivo")),
	))
}

// User is a login account. PasswordHash never leaves the server.
type User struct {
	Meta
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

func (u User) Validate() error {
	return wrapValidation(validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Required.Error("nome é obrigatório")),
		validation.Field(&u.Username, validation.Required.Error("usuário é obrigatório")),
		validation.Field(&u.Email, validation.Required.Error("email é obrigatório"), is.Email.Error("email inválido")),
		validation.Field(&u.Role, validation.Required.Error("perfil é obrigatório"), validation.In(RoleAdmin, RoleMember).Error("perfil inválido")),
	))
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return ValidationError{Msg: err.Error(), Err: err}
}
