package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const defaultSeedCopies = 1

// Entry is one catalog line of a seed file.
type Entry struct {
	Title           string   `json:"title"`
	ISBN            string   `json:"isbn"`
	PublicationYear int      `json:"publication_year,omitempty"`
	Authors         []string `json:"authors"`
	Copies          int      `json:"copies,omitempty"`
}

// SeedReport summarizes a Seed run.
type SeedReport struct {
	Books   int      `json:"books"`
	Authors int      `json:"authors"`
	Skipped []string `json:"skipped"`
}

// DecodeEntries reads a JSON array of entries.
func DecodeEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(&entries); err != nil {
		return nil, errors.Join(ledger.ErrInvalidInput, fmt.Errorf("decoding seed entries failed: %w", err))
	}

	return entries, nil
}

// Seed registers every entry with its authors. An author is a full name, the last word is the last name.
// Entries that fail validation are skipped and listed in the report, store failures abort the run.
func (r *Registrar) Seed(ctx context.Context, entries []Entry) (SeedReport, error) {
	report := SeedReport{Skipped: make([]string, 0)}
	authorIDs := make(map[string]int64)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ids := make([]int64, 0, len(entry.Authors))
		for _, name := range entry.Authors {
			name = strings.Join(strings.Fields(name), " ")
			if name == "" {
				continue
			}

			if id, known := authorIDs[name]; known {
				ids = append(ids, id)
				continue
			}

			firstName, lastName := splitName(name)
			id, err := r.AddAuthor(ctx, firstName, lastName)
			if err != nil {
				return report, err
			}

			authorIDs[name] = id
			ids = append(ids, id)
		}

		copies := entry.Copies
		if copies <= 0 {
			copies = defaultSeedCopies
		}

		_, err := r.AddBook(ctx, ledger.Book{
			ISBN:            entry.ISBN,
			Title:           entry.Title,
			PublicationYear: entry.PublicationYear,
			TotalCopies:     copies,
		}, ids...)

		switch {
		case errors.Is(err, ledger.ErrInvalidInput):
			report.Skipped = append(report.Skipped, entry.ISBN+" "+entry.Title)
		case err != nil:
			return report, err
		default:
			report.Books++
		}
	}

	report.Authors = len(authorIDs)

	return report, nil
}

func splitName(name string) (string, string) {
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return "", name
	}

	return name[:idx], name[idx+1:]
}
