package handlers

import (
	"io"
	"net/http"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/notify"

	"github.com/gin-gonic/gin"
)

// Events transmite notificações de mudança por SSE. O cliente assina uma
// coleção (ou todas, sem filtro) e recarrega sua página atual a cada evento.
type Events struct {
	Hub *notify.Hub
}

// GET /api/events?collection=customers
func (h Events) Stream(c *gin.Context) {
	ch, cancel, err := h.Hub.Subscribe(c.Request.Context(), c.Query("collection"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "falha ao assinar eventos")
		return
	}
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case change, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", change)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
