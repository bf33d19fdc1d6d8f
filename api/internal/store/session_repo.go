package store

import (
	"context"
	"database/sql"
	"time"
)

// Session is a persisted identity-provider session for one chat.
type Session struct {
	ChatID       int64
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// SessionRepo keeps sessions across restarts so users stay signed in.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

func (r *SessionRepo) Upsert(ctx context.Context, s Session) error {
	const q = `
insert into chat_sessions(chat_id, user_id, email, access_token, refresh_token, expires_at)
values ($1,$2,$3,$4,$5,$6)
on conflict (chat_id)
do update set user_id=excluded.user_id, email=excluded.email,
              access_token=excluded.access_token, refresh_token=excluded.refresh_token,
              expires_at=excluded.expires_at, updated_at=now()`
	_, err := r.DB.ExecContext(ctx, q, s.ChatID, s.UserID, s.Email, s.AccessToken, s.RefreshToken, s.ExpiresAt)
	return err
}

// Find returns sql.ErrNoRows when the chat has no stored session.
func (r *SessionRepo) Find(ctx context.Context, chatID int64) (Session, error) {
	const q = `select chat_id, user_id, email, access_token, refresh_token, expires_at
	           from chat_sessions where chat_id=$1`
	var s Session
	err := r.DB.QueryRowContext(ctx, q, chatID).Scan(
		&s.ChatID, &s.UserID, &s.Email, &s.AccessToken, &s.RefreshToken, &s.ExpiresAt)
	return s, err
}

func (r *SessionRepo) Delete(ctx context.Context, chatID int64) error {
	_, err := r.DB.ExecContext(ctx, `delete from chat_sessions where chat_id=$1`, chatID)
	return err
}
