package health

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const defaultTimeout = 5 * time.Second

type Database struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewDatabase(db *gorm.DB, timeout time.Duration) *Database {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Database{db: db, timeout: timeout}
}

// Check pings the database within the configured timeout.
func (d *Database) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %v", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	return nil
}
