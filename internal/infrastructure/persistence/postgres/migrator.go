// internal/infrastructure/persistence/postgres/migrator.go
package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"neko-signal-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// Migrator управляет миграциями базы данных
type Migrator struct {
	db         *sqlx.DB
	migrations map[int]*Migration
}

// Migration представляет одну миграцию
type Migration struct {
	ID          int
	Name        string
	Description string
	SQL         string
	Checksum    string
}

// MigrationRecord - строка таблицы migrations
type MigrationRecord struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Checksum  string    `db:"checksum"`
	AppliedAt time.Time `db:"applied_at"`
}

// MigrationStatus статус миграции
type MigrationStatus struct {
	ID        int
	Name      string
	Applied   bool
	AppliedAt time.Time
	Status    string
}

// NewMigrator создает мигратор со встроенным набором миграций
func NewMigrator(db *sqlx.DB) *Migrator {
	m := &Migrator{
		db:         db,
		migrations: make(map[int]*Migration),
	}
	for _, mig := range builtinMigrations() {
		m.Register(mig)
	}
	return m
}

// Register добавляет миграцию и считает её контрольную сумму
func (m *Migrator) Register(mig Migration) {
	mig.Checksum = calculateChecksum(mig.SQL)
	m.migrations[mig.ID] = &mig
}

// Ordered возвращает миграции по возрастанию ID
func (m *Migrator) Ordered() []*Migration {
	out := make([]*Migration, 0, len(m.migrations))
	for _, mig := range m.migrations {
		out = append(out, mig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Init инициализирует таблицу миграций
func (m *Migrator) Init(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		checksum VARCHAR(64) NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]MigrationRecord, error) {
	var records []MigrationRecord
	if err := m.db.SelectContext(ctx, &records,
		`SELECT id, name, checksum, applied_at FROM migrations ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	out := make(map[int]MigrationRecord, len(records))
	for _, r := range records {
		out[r.ID] = r
	}
	return out, nil
}

// Migrate применяет все непройденные миграции, каждую в своей транзакции
func (m *Migrator) Migrate(ctx context.Context) error {
	logger.Info("🚀 Starting database migrations...")

	if err := m.Init(ctx); err != nil {
		return err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	var count int
	for _, mig := range m.Ordered() {
		if record, ok := applied[mig.ID]; ok {
			if record.Checksum != mig.Checksum {
				return fmt.Errorf("checksum mismatch for migration %d: %s", mig.ID, mig.Name)
			}
			logger.Debug("✅ Migration already applied: %s", mig.Name)
			continue
		}

		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("failed to apply migration %d: %s: %w", mig.ID, mig.Name, err)
		}
		count++
	}

	if count > 0 {
		logger.Info("✅ Applied %d new migrations", count)
	} else {
		logger.Info("✅ Database is up to date")
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, mig *Migration) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO migrations (id, name, checksum) VALUES ($1, $2, $3)`,
		mig.ID, mig.Name, mig.Checksum); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Info("📄 Applied migration %03d: %s", mig.ID, mig.Name)
	return nil
}

// Status показывает статус миграций
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	return buildStatus(m.Ordered(), applied), nil
}

func buildStatus(migrations []*Migration, applied map[int]MigrationRecord) []MigrationStatus {
	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, mig := range migrations {
		st := MigrationStatus{ID: mig.ID, Name: mig.Name, Status: "pending"}
		if record, ok := applied[mig.ID]; ok {
			st.Applied = true
			st.AppliedAt = record.AppliedAt
			st.Status = "applied"
			if record.Checksum != mig.Checksum {
				st.Status = "checksum_mismatch"
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func calculateChecksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
