package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/reservaestilo/booking-api/internal/config"
	"github.com/reservaestilo/booking-api/internal/httperr"
	"github.com/reservaestilo/booking-api/internal/models"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Datos inválidos.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var op models.Operator
	if err := h.db.Where("email = ?", email).First(&op).Error; err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Credenciales inválidas.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Credenciales inválidas.")
		return
	}

	token, err := h.generateToken(&op)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Error al generar el token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"operator": gin.H{
			"id":    op.ID,
			"name":  op.Name,
			"email": op.Email,
			"role":  op.Role,
		},
	})
}

func (h *AuthHandler) generateToken(op *models.Operator) (string, error) {
	claims := jwt.MapClaims{
		"sub":  op.ID,
		"role": op.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
