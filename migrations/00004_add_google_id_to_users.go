package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddGoogleIDToUsers, downAddGoogleIDToUsers)
}

func upAddGoogleIDToUsers(ctx context.Context, tx *sql.Tx) error {
	query := `
		ALTER TABLE users ADD COLUMN google_id TEXT;
		ALTER TABLE users ADD CONSTRAINT users_google_id_key UNIQUE (google_id);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downAddGoogleIDToUsers(ctx context.Context, tx *sql.Tx) error {
	query := `
		ALTER TABLE users DROP CONSTRAINT IF EXISTS users_google_id_key;
		ALTER TABLE users DROP COLUMN IF EXISTS google_id;
	`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
