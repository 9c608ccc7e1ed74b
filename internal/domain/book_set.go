package domain

import "sort"

// BookSet maps identifiers to books. It is not safe for concurrent mutation:
// one goroutine owns it at a time.
type BookSet struct {
	books map[string]*Book
}

func NewBookSet() *BookSet {
	return &BookSet{books: make(map[string]*Book)}
}

// Put stores the book, overwriting any book with the same identifier.
// Books without an identifier are rejected.
func (s *BookSet) Put(book *Book) bool {
	if book == nil || book.Identifier == "" {
		return false
	}
	s.books[book.Identifier] = book
	return true
}

// Merge copies every book of other into s; books from other win.
func (s *BookSet) Merge(other *BookSet) {
	if other == nil {
		return
	}
	for id, book := range other.books {
		s.books[id] = book
	}
}

func (s *BookSet) Get(identifier string) (*Book, bool) {
	book, ok := s.books[identifier]
	return book, ok
}

func (s *BookSet) Len() int {
	return len(s.books)
}

// Books materializes the set ordered by identifier.
func (s *BookSet) Books() []*Book {
	ids := make([]string, 0, len(s.books))
	for id := range s.books {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	books := make([]*Book, 0, len(ids))
	for _, id := range ids {
		books = append(books, s.books[id])
	}
	return books
}
