package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const migrationUpTemplate = `-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}
-- Driver: {{.Driver}}

-- Write your UP migration SQL here

`

const migrationDownTemplate = `-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}
-- Description: Rollback for {{.Description}}
-- Driver: {{.Driver}}

-- Write your DOWN migration SQL here

`

// Dialects lists the migration subdirectories, one per supported database
var Dialects = []string{"postgres", "sqlite3"}

// MigrationFile represents a migration file pair for one dialect
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	Driver      string
	UpPath      string
	DownPath    string
}

// CreateMigration creates the next numbered up/down pair in every dialect
// directory under baseDir. All dialects share the same version so the
// schemas stay in step.
func CreateMigration(baseDir, name, description string) ([]MigrationFile, error) {
	safeName := sanitizeName(name)
	if safeName == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	next, err := nextVersion(baseDir)
	if err != nil {
		return nil, err
	}
	version := fmt.Sprintf("%06d", next)
	timestamp := time.Now().Format(time.RFC3339)

	created := make([]MigrationFile, 0, len(Dialects))
	for _, dialect := range Dialects {
		dir := filepath.Join(baseDir, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create migrations directory: %w", err)
		}

		baseName := fmt.Sprintf("%s_%s", version, safeName)
		mf := MigrationFile{
			Version:     version,
			Name:        name,
			Description: description,
			Timestamp:   timestamp,
			Driver:      dialect,
			UpPath:      filepath.Join(dir, baseName+".up.sql"),
			DownPath:    filepath.Join(dir, baseName+".down.sql"),
		}

		if err := createMigrationFile(mf.UpPath, migrationUpTemplate, &mf); err != nil {
			return nil, fmt.Errorf("failed to create up migration: %w", err)
		}
		if err := createMigrationFile(mf.DownPath, migrationDownTemplate, &mf); err != nil {
			_ = os.Remove(mf.UpPath)
			return nil, fmt.Errorf("failed to create down migration: %w", err)
		}
		created = append(created, mf)
	}

	return created, nil
}

// nextVersion returns one past the highest version found in any dialect directory
func nextVersion(baseDir string) (int, error) {
	highest := 0
	for _, dialect := range Dialects {
		names, err := ListMigrations(filepath.Join(baseDir, dialect))
		if err != nil {
			return 0, err
		}
		for _, n := range names {
			prefix, _, _ := strings.Cut(n, "_")
			if v, err := strconv.Atoi(prefix); err == nil && v > highest {
				highest = v
			}
		}
	}
	return highest + 1, nil
}

// createMigrationFile creates a single migration file from template
func createMigrationFile(path, tmplContent string, data *MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

// sanitizeName converts a migration name to a safe file name format
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+'a'-'A')
		case c >= '0' && c <= '9':
			result = append(result, c)
		case c == ' ' || c == '-' || c == '_':
			if len(result) > 0 && result[len(result)-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	if len(result) > 0 && result[len(result)-1] == '_' {
		result = result[:len(result)-1]
	}
	return string(result)
}

// ListMigrations returns the sorted base names of the up migrations in a directory
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	return upMigrationNames(entries), nil
}

// ListEmbedded returns the migrations compiled into the binary for a dialect
func ListEmbedded(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(embedded, "sql/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("unknown migration dialect %q: %w", dialect, err)
	}
	return upMigrationNames(entries), nil
}

func upMigrationNames(entries []fs.DirEntry) []string {
	migrations := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok && base != "" {
			migrations = append(migrations, base)
		}
	}
	sort.Strings(migrations)
	return migrations
}
