// Command importbooks bulk-loads book records from a CSV stream into the
// catalog. The input is headerless with exactly four columns:
// isbn,title,author,year_published. The whole import runs in a single
// transaction; any bad row aborts it and nothing is persisted.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"book-catalog/internal/models"
	"book-catalog/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("importbooks", flag.ContinueOnError)
	fs.SetOutput(stderr)

	file := fs.String("file", "", "Path to the CSV file ('-' reads stdin)")
	dbURL := fs.String("db", "", "Database URL (defaults to DATABASE_URL)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *file == "" {
		fmt.Fprintln(stdout, "Usage: importbooks -file <books.csv> [-db <database_url>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: file")
	}

	if *dbURL == "" {
		*dbURL = os.Getenv("DATABASE_URL")
	}
	if *dbURL == "" {
		return fmt.Errorf("no database configured: pass -db or set DATABASE_URL")
	}

	var input io.Reader
	if *file == "-" {
		input = stdin
	} else {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	books, err := parseBooks(input)
	if err != nil {
		return err
	}

	db, err := storage.NewDB(*dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	err = db.ImportBooks(books, func(b models.Book) {
		fmt.Fprintf(stdout, "Added %s from %s.\n", b.Title, b.Author)
	})
	if err != nil {
		return fmt.Errorf("import aborted, no rows were added: %w", err)
	}

	fmt.Fprintf(stdout, "Imported %d books.\n", len(books))
	return nil
}

// parseBooks reads the whole CSV stream up front so a malformed row is
// caught before the import transaction starts.
func parseBooks(r io.Reader) ([]models.Book, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4

	var books []models.Book
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, record[3])
		}

		books = append(books, models.Book{
			ISBN:          strings.TrimSpace(record[0]),
			Title:         strings.TrimSpace(record[1]),
			Author:        strings.TrimSpace(record[2]),
			YearPublished: year,
		})
	}

	return books, nil
}
