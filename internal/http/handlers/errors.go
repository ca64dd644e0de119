package handlers

import (
	"net/http"
	"sync"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/http/middleware"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/services"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	translatorMu sync.RWMutex
	translator   *services.Translator
)

// SetTranslator instala o tradutor opcional de mensagens de erro. A tradução
// é sempre melhor-esforço: qualquer falha mantém a mensagem original.
func SetTranslator(t *services.Translator) {
	translatorMu.Lock()
	defer translatorMu.Unlock()
	translator = t
}

func translate(c *gin.Context, msg string) string {
	translatorMu.RLock()
	t := translator
	translatorMu.RUnlock()
	if t == nil {
		return msg
	}
	return t.Translate(c.Request.Context(), msg)
}

// ErrorResponse padroniza o payload de erro.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error:     translate(c, message),
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError mapeia erros de domínio para respostas HTTP. Negações de
// permissão ganham um código próprio para que o cliente as distinga de falhas
// genéricas.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	case domain.IsPermissionDenied(err):
		respondError(c, http.StatusForbidden, "permission_denied", err.Error())
	default:
		utils.LogError(middleware.GetRequestID(c), "http", c.Request.Method+" "+c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
