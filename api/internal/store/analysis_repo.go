package store

import (
	"context"
	"database/sql"
	"time"
)

// Analysis caches the chat's most recent result so /last can re-render it
// without another backend call (and without another quota hit).
type Analysis struct {
	ChatID    int64
	DreamText string
	JSON      []byte
	CreatedAt time.Time
}

type AnalysisRepo struct{ DB *sql.DB }

func NewAnalysisRepo(db *sql.DB) *AnalysisRepo { return &AnalysisRepo{DB: db} }

func (r *AnalysisRepo) Upsert(ctx context.Context, chatID int64, dreamText string, analysisJSON []byte) error {
	const q = `
insert into analyses(chat_id, dream_text, analysis_json)
values ($1,$2,$3)
on conflict (chat_id)
do update set dream_text=excluded.dream_text, analysis_json=excluded.analysis_json, created_at=now()`
	_, err := r.DB.ExecContext(ctx, q, chatID, dreamText, analysisJSON)
	return err
}

// FindLatest returns sql.ErrNoRows when the chat has no cached analysis.
func (r *AnalysisRepo) FindLatest(ctx context.Context, chatID int64) (Analysis, error) {
	const q = `select chat_id, dream_text, analysis_json, created_at from analyses where chat_id=$1`
	var a Analysis
	err := r.DB.QueryRowContext(ctx, q, chatID).Scan(&a.ChatID, &a.DreamText, &a.JSON, &a.CreatedAt)
	return a, err
}
