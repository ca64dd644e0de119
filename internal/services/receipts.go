package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/repositories"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ReceiptService gera recibos em PDF para pagamentos e recebimentos
// liquidados, e a fatura de uma venda.
type ReceiptService struct {
	Payments    *repositories.SQLGateway[domain.Payment]
	Receivables *repositories.SQLGateway[domain.Receivable]
	Sales       *repositories.SQLGateway[domain.Sale]
	RequestID   string
	Loader      func(id string) (receiptData, error)
}

type receiptData struct {
	Kind        string
	ID          string
	Description string
	PartyName   string
	Amount      int64
	DueDate     time.Time
	SettledAt   *time.Time
	Quantity    int
	ProductName string
}

func (s ReceiptService) PaymentReceipt(ctx context.Context, id string) ([]byte, string, error) {
	data, err := s.loadPayment(ctx, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "receipts", "payment_receipt", "id="+id)
	return buildReceiptPDF(data)
}

func (s ReceiptService) ReceivableReceipt(ctx context.Context, id string) ([]byte, string, error) {
	data, err := s.loadReceivable(ctx, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "receipts", "receivable_receipt", "id="+id)
	return buildReceiptPDF(data)
}

func (s ReceiptService) SaleInvoice(ctx context.Context, id string) ([]byte, string, error) {
	data, err := s.loadSale(ctx, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "receipts", "sale_invoice", "id="+id)
	return buildInvoicePDF(data)
}

func (s ReceiptService) loadPayment(ctx context.Context, id string) (receiptData, error) {
	if s.Loader != nil {
		return s.Loader(id)
	}
	p, err := s.Payments.Get(ctx, id)
	if err != nil {
		return receiptData{}, err
	}
	if p.PaidAt == nil {
		return receiptData{}, domain.ValidationError{Msg: "pagamento ainda não liquidado"}
	}
	return receiptData{
		Kind:        "Pagamento",
		ID:          p.ID,
		Description: p.Description,
		Amount:      p.AmountCentavos,
		DueDate:     p.DueDate,
		SettledAt:   p.PaidAt,
	}, nil
}

func (s ReceiptService) loadReceivable(ctx context.Context, id string) (receiptData, error) {
	if s.Loader != nil {
		return s.Loader(id)
	}
	r, err := s.Receivables.Get(ctx, id)
	if err != nil {
		return receiptData{}, err
	}
	if r.ReceivedAt == nil {
		return receiptData{}, domain.ValidationError{Msg: "recebimento ainda não liquidado"}
	}
	return receiptData{
		Kind:        "Recebimento",
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.AmountCentavos,
		DueDate:     r.DueDate,
		SettledAt:   r.ReceivedAt,
	}, nil
}

func (s ReceiptService) loadSale(ctx context.Context, id string) (receiptData, error) {
	if s.Loader != nil {
		return s.Loader(id)
	}
	v, err := s.Sales.Get(ctx, id)
	if err != nil {
		return receiptData{}, err
	}
	return receiptData{
		Kind:        "Venda",
		ID:          v.ID,
		Description: v.ProductName,
		PartyName:   v.CustomerName,
		Amount:      v.TotalCentavos,
		DueDate:     v.SaleDate,
		Quantity:    v.Quantity,
		ProductName: v.ProductName,
	}, nil
}

func buildReceiptPDF(d receiptData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Recibo", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RECIBO DE "+strings.ToUpper(d.Kind))
	pdf.Ln(12)

	settled := "-"
	if d.SettledAt != nil {
		settled = utils.FormatDateBR(*d.SettledAt)
	}
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Recibo         : REC-%s", shortID(d.ID)),
		fmt.Sprintf("Descricao      : %s", orDash(d.Description)),
		fmt.Sprintf("Vencimento     : %s", utils.FormatDateBR(d.DueDate)),
		fmt.Sprintf("Liquidado em   : %s", settled),
		fmt.Sprintf("Valor          : %s", utils.FormatCentavos(d.Amount)),
	}
	for _, ln := range lines {
		pdf.Cell(0, 7, ln)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Este recibo comprova a liquidacao do lancamento acima.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECIBO_%s.pdf", shortID(d.ID))
	return buf.Bytes(), filename, nil
}

func buildInvoicePDF(d receiptData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Fatura", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "FATURA")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Fatura      : FAT-"+shortID(d.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Emitida em  : "+utils.FormatDateTimeBR(time.Now()))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Cliente:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, orDash(d.PartyName))
	pdf.Ln(10)

	qty := d.Quantity
	if qty <= 0 {
		qty = 1
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Itens:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("%dx %s - %s (%s)",
		qty, orDash(d.ProductName), utils.FormatCentavos(d.Amount), utils.FormatDateBR(d.DueDate)), "", "", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatCentavos(d.Amount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("FATURA_%s.pdf", shortID(d.ID))
	return buf.Bytes(), filename, nil
}

func orDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "NA"
	}
	return id
}
