package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// LockKey joins the parts of a lock name into a single string.
func LockKey(parts ...string) string {
	return strings.Join(parts, "\x00")
}

// AdvisoryXactLock serializes transactions sharing key until tx ends.
//
// PostgreSQL takes a transaction-scoped advisory lock. SQLite permits a
// single writer per database, so writers are already serialized there.
func AdvisoryXactLock(tx *gorm.DB, key string) error {
	if tx == nil {
		return fmt.Errorf("db: nil tx")
	}
	if !IsPostgres(tx) {
		return nil
	}
	if errLock := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; errLock != nil {
		return fmt.Errorf("db: advisory lock: %w", errLock)
	}
	return nil
}
