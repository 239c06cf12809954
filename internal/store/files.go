package store

import (
	"database/sql"
	"fmt"
)

// UpsertFile inserts f or updates the row with the same path. f.ID is set to
// the row ID.
func (s *Store) UpsertFile(f *File) (int64, error) {
	_, err := s.db.Exec(
		`INSERT INTO files (path, top_dir, partial, hash, size, last_indexed) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   top_dir = excluded.top_dir,
		   partial = excluded.partial,
		   hash = excluded.hash,
		   size = excluded.size,
		   last_indexed = excluded.last_indexed`,
		f.Path, f.TopDir, f.Partial, f.Hash, f.Size, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert file: %w", err)
	}
	// LastInsertId is unreliable for the update branch of an upsert.
	var id int64
	if err := s.db.QueryRow("SELECT id FROM files WHERE path = ?", f.Path).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert file id: %w", err)
	}
	f.ID = id
	return id, nil
}

const fileColumns = "id, path, top_dir, partial, hash, size, last_indexed"

func scanFile(scanner interface{ Scan(...any) error }) (*File, error) {
	f := &File{}
	var hash sql.NullString
	var size sql.NullInt64
	var lastIndexed sql.NullTime
	if err := scanner.Scan(&f.ID, &f.Path, &f.TopDir, &f.Partial, &hash, &size, &lastIndexed); err != nil {
		return nil, err
	}
	f.Hash = hash.String
	f.Size = size.Int64
	f.LastIndexed = lastIndexed.Time
	return f, nil
}

func (s *Store) queryFiles(query string, args ...any) ([]*File, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// FileByPath returns the catalogued file at path, or nil if there is none.
func (s *Store) FileByPath(path string) (*File, error) {
	f, err := scanFile(s.db.QueryRow("SELECT "+fileColumns+" FROM files WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// Files returns every catalogued file ordered by path.
func (s *Store) Files() ([]*File, error) {
	files, err := s.queryFiles("SELECT " + fileColumns + " FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// FileCount returns the number of catalogued files.
func (s *Store) FileCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&n); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}

// DeleteFiles removes the rows for paths in a single transaction.
func (s *Store) DeleteFiles(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(paths); start += maxParams {
		end := min(start+maxParams, len(paths))
		chunk := paths[start:end]
		q := "DELETE FROM files WHERE path IN (" + placeholderList(len(chunk)) + ")"
		if _, err := tx.Exec(q, stringsToArgs(chunk)...); err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
	}
	return tx.Commit()
}
