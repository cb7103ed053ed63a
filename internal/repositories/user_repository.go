package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"interiorerp/internal/models"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS tenants (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	owner_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	email            TEXT UNIQUE NOT NULL,
	phone            TEXT,
	role             TEXT NOT NULL,
	tenant_id        TEXT,
	tenant_ids       TEXT[] NOT NULL DEFAULT '{}',
	password_hash    TEXT NOT NULL,
	telegram_chat_id BIGINT,
	project_metrics  JSONB
);
CREATE TABLE IF NOT EXISTS telegram_links (
	code       TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	used       BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureSchema creates the profile tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, usersSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, phone, role, tenant_id, tenant_ids, password_hash,
	COALESCE(telegram_chat_id, 0), project_metrics`

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *userRepository) getOne(ctx context.Context, q string, arg any) (*models.User, error) {
	var (
		u        models.User
		phone    sql.NullString
		tenantID sql.NullString
		metrics  []byte
	)
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Name, &u.Email, &phone, &u.Role, &tenantID,
		pq.Array(&u.TenantIDs), &u.PasswordHash, &u.TelegramChatID, &metrics,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Phone = phone.String
	u.TenantID = tenantID.String
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &u.ProjectMetrics); err != nil {
			return nil, fmt.Errorf("decode project metrics of %s: %w", u.ID, err)
		}
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	const q = `
		INSERT INTO users (id, name, email, phone, role, tenant_id, tenant_ids, password_hash, telegram_chat_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, NULLIF($9, 0))`
	tenantIDs := u.TenantIDs
	if tenantIDs == nil {
		tenantIDs = []string{}
	}
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Name, u.Email, u.Phone, u.Role, u.TenantID,
		pq.Array(tenantIDs), u.PasswordHash, u.TelegramChatID,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateTenant(ctx context.Context, id, tenantID string) error {
	return r.execOne(ctx, `UPDATE users SET tenant_id = $1 WHERE id = $2`, tenantID, id)
}

func (r *userRepository) SetProjectMetrics(ctx context.Context, id string, metrics map[string]models.ProjectMetric) error {
	if metrics == nil {
		metrics = map[string]models.ProjectMetric{}
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode project metrics: %w", err)
	}
	return r.execOne(ctx, `UPDATE users SET project_metrics = $1 WHERE id = $2`, raw, id)
}

func (r *userRepository) ListMetricHolders(ctx context.Context) ([]string, error) {
	const q = `
		SELECT id FROM users
		WHERE role = $1 AND project_metrics IS NOT NULL AND project_metrics <> '{}'::jsonb
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, string(models.RoleVendor))
	if err != nil {
		return nil, fmt.Errorf("list metric holders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list metric holders: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *userRepository) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type tenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	err := r.db.QueryRowContext(ctx, `SELECT id, name, owner_id FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

func (r *tenantRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tenant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, owner_id FROM tenants WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
