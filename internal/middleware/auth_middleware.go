// agencia-crm/internal/middleware/auth_middleware.go
package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// CachedUserData es la vista del usuario que se guarda en el caché de sesión.
type CachedUserData struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// AuthMiddleware valida el token Bearer, resuelve al usuario desde Redis
// o la base de datos, y deja sus datos en el contexto de la petición.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handleAuthError(c, "No se proporcionó el token de autorización")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			handleAuthError(c, "Formato del encabezado Authorization inválido")
			return
		}
		tokenStr := parts[1]

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("método de firma inesperado: %v", token.Header["alg"])
			}
			return config.JwtKey, nil
		})
		if err != nil || !token.Valid {
			handleAuthError(c, "Token inválido o expirado")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handleAuthError(c, "Claims del token inválidos")
			return
		}
		if tipo, _ := claims["type"].(string); tipo != "access" {
			handleAuthError(c, "Token inválido o expirado")
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			handleAuthError(c, "Identificador de usuario inválido en el token")
			return
		}
		userID := uint(userIDFloat)

		cacheKey := fmt.Sprintf("user:%d:data", userID)
		if config.RDB != nil {
			cachedData, err := config.RDB.Get(config.Ctx, cacheKey).Result()
			if err == nil {
				var userData CachedUserData
				if json.Unmarshal([]byte(cachedData), &userData) == nil {
					setContextAndProceed(c, &userData)
					return
				}
				slog.Warn("No se pudo deserializar el usuario cacheado", "user_id", userID)
			} else if err != redis.Nil {
				slog.Error("Fallo al consultar Redis", "error", err, "user_id", userID)
			}
		}

		var dbUser models.User
		if err := config.DB.First(&dbUser, userID).Error; err != nil {
			handleAuthError(c, "El usuario del token no existe")
			return
		}

		userData := CachedUserData{
			UserID: dbUser.ID,
			Email:  dbUser.Email,
			Name:   dbUser.Name,
			Role:   dbUser.Role,
		}

		if config.RDB != nil {
			jsonData, err := json.Marshal(userData)
			if err != nil {
				slog.Error("No se pudo serializar el usuario para el caché", "error", err, "user_id", userID)
			} else if err := config.RDB.Set(config.Ctx, cacheKey, jsonData, 10*time.Minute).Err(); err != nil {
				slog.Error("No se pudo guardar el usuario en el caché", "error", err, "user_id", userID)
			}
		}

		setContextAndProceed(c, &userData)
	}
}

func setContextAndProceed(c *gin.Context, userData *CachedUserData) {
	c.Set("user_id", userData.UserID)
	c.Set("email", userData.Email)
	c.Set("userName", userData.Name)
	c.Set("role", userData.Role)
	c.Next()
}

// RoleMiddleware exige uno de los roles indicados. El administrador pasa siempre.
func RoleMiddleware(rolesPermitidos ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rol, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Rol no presente en el contexto"})
			c.Abort()
			return
		}

		rolUsuario, ok := rol.(string)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Formato de rol inválido"})
			c.Abort()
			return
		}

		if rolUsuario == models.RolAdministrador {
			c.Next()
			return
		}
		for _, permitido := range rolesPermitidos {
			if rolUsuario == permitido {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"detail": "Permiso denegado"})
		c.Abort()
	}
}

func handleAuthError(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"detail": message})
	c.Abort()
}
