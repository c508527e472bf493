// Package dbtest opens the postgres database used by the service integration
// tests. Tests that need it are skipped unless COMMISSION_TEST_DSN is set.
package dbtest

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"contractbill-system/internal/database"
)

const EnvDSN = "COMMISSION_TEST_DSN"

func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping database test", EnvDSN)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateCommissionDB(db))
	return db
}
