package migrations

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
	dateLayout           = "2006-01-02 15:04:05"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			now := time.Now().Format(dateLayout)
			_, err := db.ExecContext(ctx,
				`INSERT INTO users (username, password, created_date, last_login_date) VALUES (?, ?, ?, ?) ON CONFLICT (username) DO NOTHING`,
				defaultAdminUsername, defaultAdminPassword, now, now)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, defaultAdminUsername)
			return err
		},
	)
}
