package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MigrationPair is the up/down file pair for one schema version
type MigrationPair struct {
	Version  string
	BaseName string
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty up/down pair into migrationsDir. The
// version prefix is the creation timestamp so files sort in apply order.
func CreateMigration(migrationsDir, name, description string) (*MigrationPair, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	pair := &MigrationPair{Version: now.Format("20060102150405")}
	pair.BaseName = pair.Version + "_" + slugify(name)
	pair.UpPath = filepath.Join(migrationsDir, pair.BaseName+".up.sql")
	pair.DownPath = filepath.Join(migrationsDir, pair.BaseName+".down.sql")

	upHeader := migrationHeader(pair.BaseName, description, now) +
		"\n-- Write your UP migration SQL here\n"
	if err := os.WriteFile(pair.UpPath, []byte(upHeader), 0644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}

	downHeader := migrationHeader(pair.BaseName+" (Rollback)", "Rollback for "+description, now) +
		"\n-- Write your DOWN migration SQL here\n"
	if err := os.WriteFile(pair.DownPath, []byte(downHeader), 0644); err != nil {
		_ = os.Remove(pair.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return pair, nil
}

func migrationHeader(name, description string, now time.Time) string {
	return fmt.Sprintf("-- Migration: %s\n-- Created: %s\n-- Description: %s\n",
		name, now.Format(time.RFC3339), description)
}

// slugify lowercases the name and collapses separators to single underscores
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			s := b.String()
			if len(s) > 0 && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base names of the migration pairs in the
// directory, sorted by version. A missing directory is an empty list.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".up.sql"))
	}
	sort.Strings(names)
	return names, nil
}
