package store

import (
	"context"
	"database/sql"
	"fmt"
	"rabbit-bot/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend keeps the reminder list in a single table. Rows carry their
// list position so Load returns them in insertion order.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	return b, nil
}

func (b *SQLiteBackend) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		channel_id INTEGER NOT NULL,
		author_id INTEGER,
		due_at TEXT NOT NULL,
		interval_days INTEGER NOT NULL CHECK (interval_days >= 1),
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reminders_position ON reminders(position);
	`
	_, err := b.db.Exec(schema)
	return err
}

func (b *SQLiteBackend) Load(ctx context.Context) ([]models.Reminder, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, channel_id, author_id, due_at, interval_days, message
		FROM reminders
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		var (
			r      models.Reminder
			author sql.NullInt64
			due    string
		)
		if err := rows.Scan(&r.ID, &r.Channel, &author, &due, &r.IntervalDays, &r.Message); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrCorruptStore, err)
		}
		if author.Valid {
			r.Author = &author.Int64
		}
		if r.DueAt, err = parseDue(due); err != nil {
			return nil, fmt.Errorf("%w: record %s: %w", models.ErrCorruptStore, r.ID, err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return reminders, nil
}

// Replace swaps the whole table inside one transaction.
func (b *SQLiteBackend) Replace(ctx context.Context, reminders []models.Reminder) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reminders (id, position, channel_id, author_id, due_at, interval_days, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	for i, r := range reminders {
		var author sql.NullInt64
		if r.Author != nil {
			author = sql.NullInt64{Int64: *r.Author, Valid: true}
		}
		due, err := formatDue(r.DueAt)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, i, r.Channel, author, due, r.IntervalDays, r.Message); err != nil {
			return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
