// Package ledgerfake provides an in-memory ledger store for handler tests.
//
// RunInTx serializes all units of work and applies their writes only on success,
// which gives the same atomicity and isolation a SERIALIZABLE store guarantees.
package ledgerfake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

type state struct {
	books     map[int64]ledger.Book
	authors   map[int64]ledger.Author
	links     map[[2]int64]bool
	members   map[int64]ledger.Member
	records   map[int64]ledger.BorrowingRecord
	fines     map[int64]ledger.Fine
	nextID    int64
	lockTrail []string
}

func (s *state) clone() *state {
	c := &state{
		books:   make(map[int64]ledger.Book, len(s.books)),
		authors: make(map[int64]ledger.Author, len(s.authors)),
		links:   make(map[[2]int64]bool, len(s.links)),
		members: make(map[int64]ledger.Member, len(s.members)),
		records: make(map[int64]ledger.BorrowingRecord, len(s.records)),
		fines:   make(map[int64]ledger.Fine, len(s.fines)),
		nextID:  s.nextID,
	}

	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.authors {
		c.authors[k] = v
	}
	for k, v := range s.links {
		c.links[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.fines {
		c.fines[k] = v
	}

	return c
}

func (s *state) newID() int64 {
	s.nextID++
	return s.nextID
}

// Store is an in-memory implementation of the store operations the lending handlers need.
type Store struct {
	mu        sync.Mutex
	committed *state
	failures  []error
	runs      int
	lockTrail []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{committed: (&state{}).clone()}
}

// FailNextRuns makes the next calls of RunInTx fail with the given errors, one per call,
// without running the unit of work.
func (s *Store) FailNextRuns(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, errs...)
}

// Runs returns how many times RunInTx was called.
func (s *Store) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runs
}

// LockTrail returns the lock calls of the last committed or rolled back unit of work, e.g. "book:1".
func (s *Store) LockTrail() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.lockTrail...)
}

// RunInTx runs work against a private copy of the state and publishes the copy only if work returns nil.
func (s *Store) RunInTx(ctx context.Context, work ledger.UnitOfWork) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++

	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]

		return err
	}

	working := s.committed.clone()
	err := work(context.WithoutCancel(ctx), &tx{state: working})
	s.lockTrail = working.lockTrail

	if err != nil {
		return err
	}

	working.lockTrail = nil
	s.committed = working

	return nil
}

// AddBook stores book with a new id and returns the id.
func (s *Store) AddBook(book ledger.Book) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	book.ID = s.committed.newID()
	s.committed.books[book.ID] = book

	return book.ID
}

// AddMember stores member with a new id and returns the id.
func (s *Store) AddMember(member ledger.Member) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	member.ID = s.committed.newID()
	s.committed.members[member.ID] = member

	return member.ID
}

// AddRecord stores a borrowing record with a new id and returns the id. Copy counters are not touched.
func (s *Store) AddRecord(record ledger.BorrowingRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = s.committed.newID()
	s.committed.records[record.ID] = record

	return record.ID
}

// AddFine stores a fine with a new id and returns the id.
func (s *Store) AddFine(fine ledger.Fine) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	fine.ID = s.committed.newID()
	s.committed.fines[fine.ID] = fine

	return fine.ID
}

// Book returns the committed book with id.
func (s *Store) Book(id int64) ledger.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.committed.books[id]
}

// Record returns the committed borrowing record with id.
func (s *Store) Record(id int64) ledger.BorrowingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.committed.records[id]
}

// Fine returns the committed fine with id.
func (s *Store) Fine(id int64) ledger.Fine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.committed.fines[id]
}

// RecordCount returns the number of committed borrowing records.
func (s *Store) RecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.committed.records)
}

// FineCount returns the number of committed fines.
func (s *Store) FineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.committed.fines)
}

// AuthorLinked reports whether book and author are linked.
func (s *Store) AuthorLinked(bookID, authorID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.committed.links[[2]int64{bookID, authorID}]
}

// OutstandingFines returns the Unpaid fines of a member, newest first.
func (s *Store) OutstandingFines(ctx context.Context, memberID int64) ([]ledger.Fine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fines := make([]ledger.Fine, 0)
	for _, fine := range s.committed.fines {
		if fine.MemberID == memberID && fine.Status == ledger.FineUnpaid {
			fines = append(fines, fine)
		}
	}

	sort.Slice(fines, func(i, j int) bool {
		if fines[i].FineDate.Equal(fines[j].FineDate) {
			return fines[i].ID > fines[j].ID
		}

		return fines[i].FineDate.After(fines[j].FineDate)
	})

	return fines, nil
}

// CurrentBorrowings returns the open records of a member with ISBN and title, newest borrow first.
func (s *Store) CurrentBorrowings(ctx context.Context, memberID int64) ([]ledger.BorrowingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]ledger.BorrowingRecord, 0)
	for _, record := range s.committed.records {
		if record.MemberID == memberID && record.Status.IsOpen() {
			book := s.committed.books[record.BookID]
			record.ISBN = book.ISBN
			record.Title = book.Title
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].BorrowDate.Equal(records[j].BorrowDate) {
			return records[i].ID > records[j].ID
		}

		return records[i].BorrowDate.After(records[j].BorrowDate)
	})

	return records, nil
}

// FindBook returns the book with isbn.
func (s *Store) FindBook(_ context.Context, isbn string) (ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.committed.bookByISBN(isbn)
}

// FindMember returns the member with memberID.
func (s *Store) FindMember(_ context.Context, memberID int64) (ledger.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.committed.members[memberID]
	if !ok {
		return ledger.Member{}, ledger.ErrMemberNotFound
	}

	return member, nil
}

// InsertAuthor stores an author unless one with the same name exists, and returns its id.
func (s *Store) InsertAuthor(_ context.Context, author ledger.Author) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.committed.authors {
		if existing.FirstName == author.FirstName && existing.LastName == author.LastName {
			return id, nil
		}
	}

	author.ID = s.committed.newID()
	s.committed.authors[author.ID] = author

	return author.ID, nil
}

// InsertBook stores a book unless its ISBN exists, links the authors and returns the book id.
func (s *Store) InsertBook(_ context.Context, book ledger.Book, authorIDs ...int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.committed.bookByISBN(book.ISBN)
	if err == nil {
		book = existing
	} else {
		book.ID = s.committed.newID()
		book.AvailableCopies = book.TotalCopies
		s.committed.books[book.ID] = book
	}

	for _, authorID := range authorIDs {
		s.committed.links[[2]int64{book.ID, authorID}] = true
	}

	return book.ID, nil
}

// InsertMember stores a member unless the email exists, and returns the member id.
func (s *Store) InsertMember(_ context.Context, member ledger.Member) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.committed.members {
		if existing.Email == member.Email {
			return id, nil
		}
	}

	member.ID = s.committed.newID()
	s.committed.members[member.ID] = member

	return member.ID, nil
}

// UpdateMemberStatus sets the status of a member.
func (s *Store) UpdateMemberStatus(_ context.Context, memberID int64, status ledger.MemberStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.committed.members[memberID]
	if !ok {
		return ledger.ErrMemberNotFound
	}

	member.Status = status
	s.committed.members[memberID] = member

	return nil
}

func (s *state) bookByISBN(isbn string) (ledger.Book, error) {
	for _, book := range s.books {
		if book.ISBN == isbn {
			return book, nil
		}
	}

	return ledger.Book{}, ledger.ErrBookNotFound
}

// Now is a fixed instant for tests that need a clock.
var Now = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
