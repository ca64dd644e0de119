package handlers

import (
	"net/http"
	"strconv"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/utils"

	"github.com/gin-gonic/gin"
)

// ParseListQuery lê page/page_size/search da query string, clampando para os
// valores aceitos.
func ParseListQuery(c *gin.Context) listing.Query {
	q := listing.Query{Page: 1, PageSize: listing.DefaultPageSize}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v >= 1 {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && listing.ValidPageSize(v) {
		q.PageSize = v
	}
	q.Search = utils.NormalizeSpace(c.Query("search"))
	return q
}

// BindJSONOrError garante que o body existe e é parseável.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "bad_request", "body vazio")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "payload inválido")
		return false
	}
	return true
}
