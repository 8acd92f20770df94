// agencia-crm/internal/handlers/mock_test.go
package handlers

import (
	"testing"

	"agencia-crm/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// nuevaBaseSimulada abre un gorm sobre sqlmock para probar las consultas
// sin una base de datos real.
func nuevaBaseSimulada(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return gormDB, mock
}

// usarBaseSimulada apunta el DB global de los handlers a la base simulada
// y lo restaura al terminar la prueba.
func usarBaseSimulada(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	gormDB, mock := nuevaBaseSimulada(t)
	original := config.DB
	config.DB = gormDB
	t.Cleanup(func() { config.DB = original })
	return mock
}
