package database

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// migrationLockID keys the advisory lock taken while a migration runs, so two
// processes starting at once apply each version only once.
const migrationLockID = 7316402211

type Migration struct {
	Version int64
	Name    string
	Up      string
	Down    string
}

// LoadMigrations reads NNNNNN_name.up.sql / NNNNNN_name.down.sql pairs from
// fsys, ordered by version.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int64]*Migration)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, direction, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, err
		}

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if direction == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %06d_%s has no up file", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func parseMigrationName(filename string) (int64, string, string, error) {
	base := strings.TrimSuffix(filename, ".sql")

	var direction string
	switch {
	case strings.HasSuffix(base, ".up"):
		direction = "up"
	case strings.HasSuffix(base, ".down"):
		direction = "down"
	default:
		return 0, "", "", fmt.Errorf("migration %s: missing .up or .down suffix", filename)
	}
	base = strings.TrimSuffix(base, "."+direction)

	versionPart, name, ok := strings.Cut(base, "_")
	if !ok {
		return 0, "", "", fmt.Errorf("migration %s: expected NNNNNN_name", filename)
	}
	version, err := strconv.ParseInt(versionPart, 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("migration %s: bad version: %w", filename, err)
	}

	return version, name, direction, nil
}

func ensureMigrationTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    BIGINT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// AppliedVersions returns the versions recorded in schema_migrations, ascending.
func AppliedVersions(ctx context.Context, db *sqlx.DB) ([]int64, error) {
	if err := ensureMigrationTable(ctx, db); err != nil {
		return nil, err
	}

	var versions []int64
	if err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations ORDER BY version`); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return versions, nil
}

// MigrateUp applies every pending migration, each in its own transaction, and
// returns the versions it applied.
func MigrateUp(ctx context.Context, db *sqlx.DB, fsys fs.FS) ([]int64, error) {
	migrations, err := LoadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	if err := ensureMigrationTable(ctx, db); err != nil {
		return nil, err
	}

	var applied []int64
	for _, m := range migrations {
		ran := false
		err := WithTransaction(ctx, db, DefaultTxOptions(), func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
				return fmt.Errorf("lock migrations: %w", err)
			}

			var exists bool
			if err := tx.GetContext(ctx, &exists,
				`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version); err != nil {
				return fmt.Errorf("check migration %d: %w", m.Version, err)
			}
			if exists {
				return nil
			}

			if _, err := tx.ExecContext(ctx, m.Up); err != nil {
				return fmt.Errorf("execute migration %06d_%s: %w", m.Version, m.Name, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
				return fmt.Errorf("record migration %d: %w", m.Version, err)
			}
			ran = true
			return nil
		})
		if err != nil {
			return applied, err
		}
		if ran {
			applied = append(applied, m.Version)
		}
	}

	return applied, nil
}

// MigrateDown reverts the latest steps applied migrations, newest first.
func MigrateDown(ctx context.Context, db *sqlx.DB, fsys fs.FS, steps int) ([]int64, error) {
	migrations, err := LoadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	byVersion := make(map[int64]Migration, len(migrations))
	for _, m := range migrations {
		byVersion[m.Version] = m
	}

	versions, err := AppliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	var reverted []int64
	for i := len(versions) - 1; i >= 0 && len(reverted) < steps; i-- {
		m, ok := byVersion[versions[i]]
		if !ok {
			return reverted, fmt.Errorf("applied migration %d has no source file", versions[i])
		}
		if m.Down == "" {
			return reverted, fmt.Errorf("migration %06d_%s has no down file", m.Version, m.Name)
		}

		err := WithTransaction(ctx, db, DefaultTxOptions(), func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
				return fmt.Errorf("lock migrations: %w", err)
			}
			if _, err := tx.ExecContext(ctx, m.Down); err != nil {
				return fmt.Errorf("revert migration %06d_%s: %w", m.Version, m.Name, err)
			}
			_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, m.Version)
			return err
		})
		if err != nil {
			return reverted, err
		}
		reverted = append(reverted, m.Version)
	}

	return reverted, nil
}
