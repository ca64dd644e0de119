package handlers

import (
	"net/http"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

// Resource expõe um gateway de listagem como rotas REST. Todas as entidades
// compartilham o mesmo formato de resposta, então as páginas de listagem do
// cliente não precisam de código por entidade.
type Resource[T listing.Record] struct {
	Name string
	GW   listing.Gateway[T]
}

// Mount registra as rotas CRUD mais ativação e baixa no grupo dado.
func (h Resource[T]) Mount(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/active", h.SetActive)
	g.POST("/:id/settle", h.Settle)
}

func (h Resource[T]) List(c *gin.Context) {
	q := ParseListQuery(c)
	page, err := h.GW.List(c.Request.Context(), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if page.Rows == nil {
		page.Rows = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":       page.Rows,
		"totalCount": page.TotalCount,
		"page":       q.Page,
		"pageSize":   q.PageSize,
	})
}

func (h Resource[T]) Get(c *gin.Context) {
	row, err := h.GW.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h Resource[T]) Create(c *gin.Context) {
	var row T
	if !BindJSONOrError(c, &row) {
		return
	}
	if err := validateRow(row); err != nil {
		RespondDomainError(c, err)
		return
	}
	created, err := h.GW.Insert(c.Request.Context(), row)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h Resource[T]) Update(c *gin.Context) {
	var row T
	if !BindJSONOrError(c, &row) {
		return
	}
	if err := validateRow(row); err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := h.GW.Update(c.Request.Context(), c.Param("id"), row)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h Resource[T]) Delete(c *gin.Context) {
	if err := h.GW.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "registro removido"})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h Resource[T]) SetActive(c *gin.Context) {
	var req setActiveRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	row, err := h.GW.SetActive(c.Request.Context(), c.Param("id"), req.Active)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type settleRequest struct {
	At *time.Time `json:"at"`
}

func (h Resource[T]) Settle(c *gin.Context) {
	var req settleRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}
	at := utils.NowUTC()
	if req.At != nil {
		at = req.At.UTC()
	}
	row, err := h.GW.Settle(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		if err == listing.ErrNotSettleable {
			respondError(c, http.StatusBadRequest, "not_settleable", err.Error())
			return
		}
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func validateRow(row any) error {
	if v, ok := row.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
