package store

import (
	"context"
	"fmt"

	"github.com/mrz1836/forja/internal/domain"
)

// SaveFiles replaces the stored snapshot with files in one transaction.
// Order is preserved.
func (s *Store) SaveFiles(ctx context.Context, files []domain.FileItem) error {
	if err := s.check(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return fmt.Errorf("clear files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (id, path, name, content, language, size, created_at, modified_at, is_new, is_modified, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range files {
		if _, err := stmt.ExecContext(ctx,
			f.ID, f.Path, f.Name, f.Content, f.Language, f.Size,
			formatTime(f.Timestamp), formatTime(f.LastModified),
			boolInt(f.IsNew), boolInt(f.IsModified), i,
		); err != nil {
			return fmt.Errorf("insert file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadFiles returns the stored snapshot in saved order.
func (s *Store) LoadFiles(ctx context.Context) ([]domain.FileItem, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, name, content, language, size, created_at, modified_at, is_new, is_modified
		FROM files ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []domain.FileItem
	for rows.Next() {
		var (
			f                 domain.FileItem
			created, modified string
			isNew, isModified int
		)
		if err := rows.Scan(&f.ID, &f.Path, &f.Name, &f.Content, &f.Language, &f.Size,
			&created, &modified, &isNew, &isModified); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		if f.Timestamp, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("file %s created_at: %w", f.Path, err)
		}
		if f.LastModified, err = parseTime(modified); err != nil {
			return nil, fmt.Errorf("file %s modified_at: %w", f.Path, err)
		}
		f.IsNew = isNew != 0
		f.IsModified = isModified != 0
		files = append(files, f)
	}
	return files, rows.Err()
}
