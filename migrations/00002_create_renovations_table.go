package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateRenovationsTable, downCreateRenovationsTable)
}

func upCreateRenovationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE renovations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			original_image TEXT NOT NULL,
			generated_image TEXT NOT NULL,
			room_type TEXT NOT NULL,
			description TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX renovations_user_id_idx ON renovations (user_id);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateRenovationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS renovations;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
