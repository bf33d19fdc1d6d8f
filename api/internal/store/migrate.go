package store

import (
	"context"
	"database/sql"
)

// One statement per entry: pgx's extended protocol rejects multi-statement
// Exec.
var ddl = []string{
	`create table if not exists journal_notes (
		id         bigserial primary key,
		chat_id    bigint not null,
		body       text not null,
		created_at timestamptz not null default now()
	)`,
	`create index if not exists journal_notes_chat_idx on journal_notes (chat_id, created_at desc)`,
	`create table if not exists chat_sessions (
		chat_id       bigint primary key,
		user_id       text not null,
		email         text not null,
		access_token  text not null,
		refresh_token text not null,
		expires_at    timestamptz not null,
		updated_at    timestamptz not null default now()
	)`,
	`create table if not exists analyses (
		chat_id       bigint primary key,
		dream_text    text not null,
		analysis_json jsonb not null,
		created_at    timestamptz not null default now()
	)`,
}

// Migrate creates the bot's tables. Idempotent; runs at startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
