// agencia-crm/internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// LoginRequest son las credenciales de inicio de sesión.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest lleva el refresh token a canjear.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func emitirToken(usuario models.User, ttl time.Duration, tipo string) (string, error) {
	claims := jwt.MapClaims{
		"sub":     usuario.Email,
		"user_id": usuario.ID,
		"role":    usuario.Role,
		"type":    tipo,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JwtKey)
}

// LoginHandler valida credenciales y emite el par de tokens.
func LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	var usuario models.User
	if err := config.DB.Where("email = ?", req.Email).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Credenciales incorrectas"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar el usuario"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Credenciales incorrectas"})
		return
	}

	access, err := emitirToken(usuario, accessTokenTTL, "access")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo emitir el token"})
		return
	}
	refresh, err := emitirToken(usuario, refreshTokenTTL, "refresh")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo emitir el token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"user_id":       usuario.ID,
		"name":          usuario.Name,
		"role":          usuario.Role,
	})
}

// RefreshHandler canjea un refresh token válido por un nuevo access token.
func RefreshHandler(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	token, err := jwt.Parse(req.RefreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("método de firma inesperado")
		}
		return config.JwtKey, nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Refresh token inválido o expirado"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Refresh token inválido o expirado"})
		return
	}

	email, _ := claims["sub"].(string)
	var usuario models.User
	if err := config.DB.Where("email = ?", email).First(&usuario).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Usuario no encontrado"})
		return
	}

	access, err := emitirToken(usuario, accessTokenTTL, "access")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo emitir el token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": access,
		"token_type":   "bearer",
	})
}
