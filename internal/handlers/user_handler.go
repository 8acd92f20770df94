// agencia-crm/internal/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserResponse es la vista pública de un usuario; nunca expone el hash de contraseña.
type UserResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phone_number"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
	}
}

// UserCreate define los datos de alta de un usuario.
type UserCreate struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

// UserUpdate define la actualización parcial de un usuario.
type UserUpdate struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Role        *string `json:"role"`
	Password    *string `json:"password"`
	PhoneNumber *string `json:"phone_number"`
}

func rolValido(rol string) bool {
	switch rol {
	case models.RolVendedor, models.RolEncargado, models.RolAdministrador:
		return true
	}
	return false
}

// CreateUserHandler da de alta un usuario con la contraseña hasheada.
func CreateUserHandler(c *gin.Context) {
	var req UserCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}
	if !rolValido(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Rol no reconocido: " + req.Role})
		return
	}

	var existente models.User
	if err := config.DB.Where("email = ?", req.Email).First(&existente).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "El usuario ya existe"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo procesar la contraseña"})
		return
	}

	usuario := models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hash),
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
	}
	if err := config.DB.Create(&usuario).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo crear el usuario"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Usuario creado con éxito", "user": toUserResponse(usuario)})
}

// ListUsersHandler lista todos los usuarios.
func ListUsersHandler(c *gin.Context) {
	var usuarios []models.User
	if err := config.DB.Order("id asc").Find(&usuarios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar los usuarios"})
		return
	}

	respuesta := make([]UserResponse, 0, len(usuarios))
	for _, u := range usuarios {
		respuesta = append(respuesta, toUserResponse(u))
	}
	c.JSON(http.StatusOK, respuesta)
}

// UpdateUserHandler actualiza parcialmente un usuario.
func UpdateUserHandler(c *gin.Context) {
	var usuario models.User
	if err := config.DB.First(&usuario, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Usuario no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar el usuario"})
		return
	}

	var req UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}
	if req.Role != nil && !rolValido(*req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Rol no reconocido: " + *req.Role})
		return
	}

	cambios := map[string]interface{}{}
	if req.Name != nil {
		cambios["name"] = *req.Name
	}
	if req.Email != nil {
		cambios["email"] = *req.Email
	}
	if req.Role != nil {
		cambios["role"] = *req.Role
	}
	if req.PhoneNumber != nil {
		cambios["phone_number"] = *req.PhoneNumber
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo procesar la contraseña"})
			return
		}
		cambios["password"] = string(hash)
	}

	if len(cambios) > 0 {
		if err := config.DB.Model(&usuario).Updates(cambios).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo actualizar el usuario"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usuario actualizado con éxito", "user": toUserResponse(usuario)})
}

// DeleteUserHandler elimina un usuario.
func DeleteUserHandler(c *gin.Context) {
	var usuario models.User
	if err := config.DB.First(&usuario, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Usuario no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar el usuario"})
		return
	}

	if err := config.DB.Delete(&usuario).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo eliminar el usuario"})
		return
	}

	c.Status(http.StatusNoContent)
}
