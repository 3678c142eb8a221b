package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"book-catalog/internal/models"
)

// SearchField names a searchable books column.
type SearchField string

const (
	SearchByTitle  SearchField = "title"
	SearchByAuthor SearchField = "author"
	SearchByISBN   SearchField = "isbn"
)

// column returns the books column for the field. Fields are a closed set so
// the column name can be interpolated into the query safely.
func (f SearchField) column() (string, error) {
	switch f {
	case SearchByTitle, SearchByAuthor, SearchByISBN:
		return string(f), nil
	}
	return "", fmt.Errorf("unknown search field %q", string(f))
}

// SearchBooks returns distinct books whose field contains term as a
// substring, in insertion order.
func (db *DB) SearchBooks(field SearchField, term string) ([]models.Book, error) {
	col, err := field.column()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT DISTINCT id, isbn, title, author, year_published FROM books WHERE %s LIKE '%%' || ? || '%%' ORDER BY id",
		col,
	)
	rows, err := db.conn.Query(query, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.YearPublished); err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	return books, rows.Err()
}

// GetBookByID retrieves a single book by ID. Returns (nil, nil) when no
// book matches; the detail page renders without book data in that case.
func (db *DB) GetBookByID(id int64) (*models.Book, error) {
	row := db.conn.QueryRow(
		"SELECT id, isbn, title, author, year_published FROM books WHERE id = ?",
		id,
	)

	var b models.Book
	if err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.YearPublished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// InsertBook inserts a single book.
func (db *DB) InsertBook(b models.Book) error {
	_, err := db.conn.Exec(
		"INSERT INTO books (isbn, title, author, year_published) VALUES (?, ?, ?, ?)",
		b.ISBN, b.Title, b.Author, b.YearPublished,
	)
	return err
}

// ImportBooks inserts all books in a single transaction. Any insert failure
// rolls the whole batch back and nothing is persisted. The each callback,
// when non-nil, runs after every successful insert.
func (db *DB) ImportBooks(books []models.Book, each func(models.Book)) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO books (isbn, title, author, year_published) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, b := range books {
		if _, err := stmt.Exec(b.ISBN, b.Title, b.Author, b.YearPublished); err != nil {
			return fmt.Errorf("row %d (%s): %w", i+1, b.Title, err)
		}
		if each != nil {
			each(b)
		}
	}

	return tx.Commit()
}

// BookCount returns the number of books in the database.
func (db *DB) BookCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM books").Scan(&count)
	return count, err
}
