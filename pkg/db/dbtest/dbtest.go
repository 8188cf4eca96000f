// Package dbtest opens throwaway sqlite databases for repository tests.
package dbtest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns an in-memory sqlite database pinned to one connection and runs
// the given DDL statements against it.
func Open(t *testing.T, ddl ...string) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("exec ddl: %v\n%s", err, stmt)
		}
	}
	return conn
}

// CountersDDL mirrors the counters table from the migrations.
const CountersDDL = `CREATE TABLE counters (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
)`
