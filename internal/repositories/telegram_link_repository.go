package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TelegramLink is a one-shot code binding a Telegram chat to a profile.
type TelegramLink struct {
	Code      string
	UserID    string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

type TelegramLinkRepository interface {
	Create(ctx context.Context, userID, code string, ttl time.Duration) (*TelegramLink, error)
	// Redeem consumes code and stores chatID on the owning profile in one
	// transaction. Unknown, used and expired codes all yield ErrNotFound.
	Redeem(ctx context.Context, code string, chatID int64) (*TelegramLink, error)
}

type telegramLinkRepository struct{ db *sql.DB }

func NewTelegramLinkRepository(db *sql.DB) TelegramLinkRepository {
	return &telegramLinkRepository{db: db}
}

func (r *telegramLinkRepository) Create(ctx context.Context, userID, code string, ttl time.Duration) (*TelegramLink, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO telegram_links (code, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING code, user_id, expires_at, used, created_at
	`, code, userID, time.Now().Add(ttl))

	var l TelegramLink
	if err := row.Scan(&l.Code, &l.UserID, &l.ExpiresAt, &l.Used, &l.CreatedAt); err != nil {
		return nil, fmt.Errorf("create telegram link: %w", err)
	}
	return &l, nil
}

func (r *telegramLinkRepository) Redeem(ctx context.Context, code string, chatID int64) (*TelegramLink, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var l TelegramLink
	err = tx.QueryRowContext(ctx, `
		SELECT code, user_id, expires_at, used, created_at
		FROM telegram_links
		WHERE code = $1
		FOR UPDATE
	`, code).Scan(&l.Code, &l.UserID, &l.ExpiresAt, &l.Used, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redeem telegram link: %w", err)
	}
	if l.Used || time.Now().After(l.ExpiresAt) {
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE telegram_links SET used = true WHERE code = $1`, l.Code); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET telegram_chat_id = $1 WHERE id = $2`, chatID, l.UserID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	l.Used = true
	return &l, nil
}
