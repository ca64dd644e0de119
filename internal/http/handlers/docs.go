package handlers

import (
	"context"
	"net/http"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/http/middleware"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// Docs expõe os recibos e faturas em PDF.
type Docs struct {
	Receipts services.ReceiptService
}

// GET /api/payments/:id/receipt
func (h Docs) PaymentReceipt(c *gin.Context) {
	h.respondPDF(c, func(ctx context.Context, id string) ([]byte, string, error) {
		svc := h.Receipts
		svc.RequestID = middleware.GetRequestID(c)
		return svc.PaymentReceipt(ctx, id)
	})
}

// GET /api/receivables/:id/receipt
func (h Docs) ReceivableReceipt(c *gin.Context) {
	h.respondPDF(c, func(ctx context.Context, id string) ([]byte, string, error) {
		svc := h.Receipts
		svc.RequestID = middleware.GetRequestID(c)
		return svc.ReceivableReceipt(ctx, id)
	})
}

// GET /api/sales/:id/invoice
func (h Docs) SaleInvoice(c *gin.Context) {
	h.respondPDF(c, func(ctx context.Context, id string) ([]byte, string, error) {
		svc := h.Receipts
		svc.RequestID = middleware.GetRequestID(c)
		return svc.SaleInvoice(ctx, id)
	})
}

func (h Docs) respondPDF(c *gin.Context, gen func(context.Context, string) ([]byte, string, error)) {
	pdf, filename, err := gen(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
