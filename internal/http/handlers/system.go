package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// System agrupa os endpoints de saúde.
type System struct {
	DB *sql.DB
}

func (s System) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "backend em execução"})
}

func (s System) DBCheck(c *gin.Context) {
	if s.DB == nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "banco de dados não conectado")
		return
	}
	if err := s.DB.PingContext(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "falha ao consultar o banco")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conexão com o banco OK"})
}
