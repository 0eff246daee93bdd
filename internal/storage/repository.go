package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a guild has no subscription row.
var ErrNotFound = errors.New("server not found")

// Repository handles all database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS servers (
			guild_id VARCHAR(20) PRIMARY KEY,
			channel_id VARCHAR(20) NOT NULL,
			role_id VARCHAR(20),
			last_offer_key VARCHAR(100),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Upsert creates or replaces a guild's subscription. The delivery marker
// is always reset so the next reconciliation treats the guild as never
// notified; a fresh setup gets the current offer immediately even when
// the previous configuration already saw it.
func (r *Repository) Upsert(ctx context.Context, guildID, channelID string, roleID sql.NullString) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO servers (guild_id, channel_id, role_id, last_offer_key) VALUES (?, ?, ?, NULL)
		 ON CONFLICT(guild_id) DO UPDATE SET
			channel_id = excluded.channel_id,
			role_id = excluded.role_id,
			last_offer_key = NULL`,
		guildID, channelID, roleID,
	)
	return err
}

// Get retrieves a guild's subscription
func (r *Repository) Get(ctx context.Context, guildID string) (*Server, error) {
	s := &Server{}
	err := r.db.QueryRowContext(ctx,
		`SELECT guild_id, channel_id, role_id, last_offer_key, created_at FROM servers WHERE guild_id = ?`,
		guildID,
	).Scan(&s.GuildID, &s.ChannelID, &s.RoleID, &s.LastOfferKey, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListAll returns all subscribed guilds
func (r *Repository) ListAll(ctx context.Context) ([]*Server, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT guild_id, channel_id, role_id, last_offer_key, created_at FROM servers`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []*Server
	for rows.Next() {
		s := &Server{}
		if err := rows.Scan(&s.GuildID, &s.ChannelID, &s.RoleID, &s.LastOfferKey, &s.CreatedAt); err != nil {
			return nil, err
		}
		servers = append(servers, s)
	}

	return servers, rows.Err()
}

// UpdateMarker records the offer that was just delivered to a guild
func (r *Repository) UpdateMarker(ctx context.Context, guildID, offerKey string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE servers SET last_offer_key = ? WHERE guild_id = ?`,
		offerKey, guildID,
	)
	return err
}

// Remove deletes a guild's subscription. Returns false when the guild
// had no subscription to remove.
func (r *Repository) Remove(ctx context.Context, guildID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM servers WHERE guild_id = ?`,
		guildID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
