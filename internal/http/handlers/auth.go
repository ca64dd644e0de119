package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/http/middleware"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/repositories"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Auth cuida de login, registro e troca de senha.
type Auth struct {
	DB     *sql.DB
	Secret []byte
}

type authUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (a Auth) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	u, err := repositories.FindUserByLogin(c.Request.Context(), a.DB, utils.TrimOrEmpty(req.Login))
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusUnauthorized, "invalid_credentials", "email/usuário ou senha incorretos")
			return
		}
		RespondDomainError(c, err)
		return
	}
	if !u.Active {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "conta desativada")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "email/usuário ou senha incorretos")
		return
	}

	token, err := a.signToken(u)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "falha ao gerar token")
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "login", "user="+u.Username)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toAuthUser(u),
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// POST /api/auth/register
func (a Auth) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	u := domain.User{
		Name:     utils.TrimOrEmpty(req.Name),
		Username: utils.TrimOrEmpty(req.Username),
		Email:    utils.TrimOrEmpty(req.Email),
		Phone:    utils.DigitsOnly(req.Phone),
		Role:     domain.RoleMember,
	}
	if err := u.Validate(); err != nil {
		RespondDomainError(c, err)
		return
	}
	if len(req.Password) < 6 {
		RespondDomainError(c, domain.ValidationError{Field: "password", Msg: "senha deve ter ao menos 6 caracteres"})
		return
	}

	var exists int
	err := a.DB.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM users WHERE email = ? OR username = ?",
		u.Email, u.Username).Scan(&exists)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "falha ao verificar usuário", Err: err})
		return
	}
	if exists > 0 {
		RespondDomainError(c, domain.ConflictError{Resource: "usuário", Msg: "email ou usuário já cadastrado"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "falha ao proteger senha", Err: err})
		return
	}

	u.ID = uuid.NewString()
	u.Active = true
	now := utils.NowUTC()
	_, err = a.DB.ExecContext(c.Request.Context(), `
        INSERT INTO users (id, active, owner_id, created_at, updated_at, name, username, email, phone, role, password_hash)
        VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.ID, now, now, u.Name, u.Username, u.Email, u.Phone, u.Role, string(hash))
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "falha ao salvar usuário", Err: err})
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "register", "user="+u.Username)
	c.JSON(http.StatusCreated, gin.H{
		"message": "cadastro realizado",
		"user":    toAuthUser(u),
	})
}

type resetPasswordRequest struct {
	Login           string `json:"login"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// POST /api/auth/reset-password
func (a Auth) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if len(req.NewPassword) < 6 {
		RespondDomainError(c, domain.ValidationError{Field: "newPassword", Msg: "senha deve ter ao menos 6 caracteres"})
		return
	}

	u, err := repositories.FindUserByLogin(c.Request.Context(), a.DB, utils.TrimOrEmpty(req.Login))
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusUnauthorized, "invalid_credentials", "email/usuário ou senha incorretos")
			return
		}
		RespondDomainError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "email/usuário ou senha incorretos")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "falha ao proteger senha", Err: err})
		return
	}
	_, err = a.DB.ExecContext(c.Request.Context(),
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		string(hash), utils.NowUTC(), u.ID)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "falha ao atualizar senha", Err: err})
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "reset_password", "user="+u.Username)
	c.JSON(http.StatusOK, gin.H{"message": "senha atualizada"})
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UpdateProfile lets the logged-in user edit their own display data.
func (a Auth) UpdateProfile(c *gin.Context) {
	p := middleware.Principal(c)
	if p == nil {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "token ausente")
		return
	}

	var req updateProfileRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	name := utils.TrimOrEmpty(req.Name)
	if name == "" {
		RespondDomainError(c, domain.ValidationError{Field: "name", Msg: "nome é obrigatório"})
		return
	}

	_, err := a.DB.ExecContext(c.Request.Context(),
		"UPDATE users SET name = ?, phone = ?, updated_at = ? WHERE id = ?",
		name, utils.DigitsOnly(req.Phone), utils.NowUTC(), p.ID)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "falha ao atualizar perfil", Err: err})
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "update_profile", "user="+p.ID)
	c.JSON(http.StatusOK, gin.H{"message": "perfil atualizado"})
}

func (a Auth) signToken(u domain.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role,
		"name": u.Name,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(a.Secret)
}

func toAuthUser(u domain.User) authUser {
	return authUser{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}
