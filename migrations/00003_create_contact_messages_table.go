package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateContactMessagesTable, downCreateContactMessagesTable)
}

func upCreateContactMessagesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE contact_messages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			company TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateContactMessagesTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS contact_messages;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
