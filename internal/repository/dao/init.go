package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Event{},
		&Checkpoint{},
		&Registration{},
		&CheckpointCheckIn{},
		&ScanAttempt{},
		&Team{},
		&TeamMember{},
		&ScoringRound{},
		&Score{},
	)
}

// isUniqueViolation reports whether err is a unique constraint failure on the named
// index. MySQL connections open with TranslateError, so they only surface
// gorm.ErrDuplicatedKey and the constraint name cannot be checked.
func isUniqueViolation(err error, constraint string) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}

	return constraint == "" ||
		pgErr.ConstraintName == constraint ||
		strings.Contains(pgErr.Message, `"`+constraint+`"`)
}
