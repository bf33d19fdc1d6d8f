package store

import (
	"context"
	"database/sql"
	"time"
)

type Note struct {
	ID        int64
	ChatID    int64
	Body      string
	CreatedAt time.Time
}

// JournalRepo stores the per-chat dream journal.
type JournalRepo struct{ DB *sql.DB }

func NewJournalRepo(db *sql.DB) *JournalRepo { return &JournalRepo{DB: db} }

func (r *JournalRepo) Add(ctx context.Context, chatID int64, body string) (Note, error) {
	const q = `insert into journal_notes(chat_id, body) values ($1, $2)
	           returning id, created_at`
	n := Note{ChatID: chatID, Body: body}
	if err := r.DB.QueryRowContext(ctx, q, chatID, body).Scan(&n.ID, &n.CreatedAt); err != nil {
		return Note{}, err
	}
	return n, nil
}

// List returns the chat's notes, newest first.
func (r *JournalRepo) List(ctx context.Context, chatID int64, limit int) ([]Note, error) {
	const q = `select id, chat_id, body, created_at
	           from journal_notes
	           where chat_id=$1
	           order by created_at desc
	           limit $2`
	rows, err := r.DB.QueryContext(ctx, q, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.ChatID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete removes one note; the chat guard keeps users inside their own data.
func (r *JournalRepo) Delete(ctx context.Context, chatID, noteID int64) (bool, error) {
	const q = `delete from journal_notes where chat_id=$1 and id=$2`
	res, err := r.DB.ExecContext(ctx, q, chatID, noteID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
