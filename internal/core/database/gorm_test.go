package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN(
		"jdbc:mysql://root:pw@db.local:3306/noteapp?useSSL=false&characterEncoding=utf8&serverTimezone=UTC",
		"", "")
	assert.Equal(t, "root:pw@tcp(db.local:3306)/noteapp?charset=utf8&loc=UTC&parseTime=true&tls=false", got)

	got = normalizeMySQLDSN("mysql://db.local:3306/noteapp", "app", "secret")
	assert.Equal(t, "app:secret@tcp(db.local:3306)/noteapp?charset=utf8mb4&parseTime=true", got)

	raw := "app:secret@tcp(db.local:3306)/noteapp?parseTime=true"
	assert.Equal(t, raw, normalizeMySQLDSN(raw, "x", "y"))
	assert.Equal(t, "", normalizeMySQLDSN("  ", "", ""))
}

func TestDSNForLog(t *testing.T) {
	assert.Equal(t, "postgres://app:****@db:5432/noteapp", DSNForLog("postgres://app:secret@db:5432/noteapp"))
	assert.Equal(t, "file:noteapp.db", DSNForLog("file:noteapp.db"))
}

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:gorm_test?mode=memory&cache=shared", LogLevel: "silent"})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestDSNForLogWithoutPassword(t *testing.T) {
	assert.Equal(t, "postgres://app@db/noteapp", DSNForLog("postgres://app@db/noteapp"))
	assert.Equal(t, "root:****@tcp(db:3306)/noteapp", DSNForLog("root:pw@tcp(db:3306)/noteapp"))
}
