// Copyright © 2024 Martin Novak
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openings

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteSource is a Source backed by the openings table of an sqlite
// database, with one opening per row in its moves column.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens the opening database at path, creating the table if
// it does not exist yet.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openings: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS openings (moves TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("openings: %s: %w", path, err)
	}

	return &SQLiteSource{db: db}, nil
}

func (source *SQLiteSource) Fetch(ctx context.Context, n int) ([]string, error) {
	rows, err := source.db.QueryContext(ctx,
		`SELECT moves FROM openings WHERE rowid IN (SELECT rowid FROM openings ORDER BY random() LIMIT ?)`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var openings []string
	for rows.Next() {
		var moves string
		if err := rows.Scan(&moves); err != nil {
			return nil, err
		}

		openings = append(openings, moves)
	}

	return openings, rows.Err()
}

// Import inserts every non-empty line read from r as an opening in a
// single transaction, and returns the number of openings inserted.
func (source *SQLiteSource) Import(ctx context.Context, r io.Reader) (int, error) {
	tx, err := source.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO openings (moves) VALUES (?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line == "" {
			continue
		}

		if _, err := stmt.ExecContext(ctx, line); err != nil {
			return 0, err
		}

		count++
	}

	if err := scanner.Err(); err != nil {
		return 0, err
	}

	return count, tx.Commit()
}

// Count returns the number of openings in the database.
func (source *SQLiteSource) Count(ctx context.Context) (int, error) {
	var count int
	err := source.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM openings`).Scan(&count)
	return count, err
}

func (source *SQLiteSource) Close() error {
	return source.db.Close()
}
