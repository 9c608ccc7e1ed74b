package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"lovelybooks/collector/internal/domain"
	"lovelybooks/collector/internal/textclean"
)

// ErrExtraction marks a listing entry that could not be turned into a book.
var ErrExtraction = errors.New("could not extract book from entry")

// flexibleID accepts identifiers sent either as JSON strings or numbers
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier is neither string nor number: %w", err)
	}
	*id = flexibleID(n.String())
	return nil
}

type rawEntry struct {
	Book *rawBook `json:"book"`
}

type rawBook struct {
	ID                          flexibleID      `json:"id"`
	ISBN                        *string         `json:"isbn"`
	Title                       *string         `json:"title"`
	Subtitle                    *string         `json:"subtitle"`
	Summary                     *string         `json:"summary"`
	BookTypeDescription         *string         `json:"bookTypeDescription"`
	NumberOfPages               *int            `json:"numberOfPages"`
	Author                      *rawRef         `json:"author"`
	Genre                       *string         `json:"genre"`
	Language                    *string         `json:"language"`
	Publisher                   *string         `json:"publisher"`
	FirstEditionPublicationDate json.RawMessage `json:"firstEditionPublicationDate"`
	RatingDistribution          json.RawMessage `json:"ratingDistribution"`
	AverageRating               *float64        `json:"averageRating"`
	NumberOfRatings             *int            `json:"numberOfRatings"`
	NumberOfReviews             *int            `json:"numberOfReviews"`
	Cover                       *rawCover       `json:"cover"`
}

type rawRef struct {
	ID   flexibleID `json:"id"`
	Name *string    `json:"name"`
}

type rawCover struct {
	URL *string `json:"url"`
}

// BookParser maps one raw listing entry to a book. It performs no I/O.
type BookParser struct {
	titles    textclean.Cleaner
	summaries textclean.Cleaner
}

// NewBookParser uses titles for title/subtitle and summaries for the summary.
// Nil cleaners leave the text untouched.
func NewBookParser(titles, summaries textclean.Cleaner) *BookParser {
	return &BookParser{
		titles:    titles,
		summaries: summaries,
	}
}

func (p *BookParser) ParseBook(raw json.RawMessage) (*domain.Book, error) {
	var entry rawEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if entry.Book == nil {
		return nil, fmt.Errorf("%w: missing book object", ErrExtraction)
	}

	src := entry.Book
	if src.ID == "" {
		return nil, fmt.Errorf("%w: missing identifier", ErrExtraction)
	}

	book := &domain.Book{
		Identifier:          string(src.ID),
		ISBN:                src.ISBN,
		Title:               clean(p.titles, src.Title),
		Subtitle:            clean(p.titles, src.Subtitle),
		Summary:             clean(p.summaries, src.Summary),
		BookType:            src.BookTypeDescription,
		Pages:               src.NumberOfPages,
		Genre:               src.Genre,
		Language:            src.Language,
		Publisher:           src.Publisher,
		FirstPublishingDate: rawScalar(src.FirstEditionPublicationDate),
		RatingDistribution:  nullToNil(src.RatingDistribution),
		AverageRating:       src.AverageRating,
		NumberOfRatings:     src.NumberOfRatings,
		NumberOfReviews:     src.NumberOfReviews,
	}

	if src.Author != nil {
		book.Author = src.Author.Name
		if src.Author.ID != "" {
			authorID := string(src.Author.ID)
			book.AuthorID = &authorID
		}
	}
	if src.Cover != nil {
		book.CoverURL = src.Cover.URL
	}

	return book, nil
}

func clean(cleaner textclean.Cleaner, text *string) *string {
	if text == nil || cleaner == nil {
		return text
	}
	cleaned := cleaner.Clean(*text)
	return &cleaned
}

// rawScalar keeps dates as the source sends them, whether string or epoch number
func rawScalar(raw json.RawMessage) *string {
	raw = nullToNil(raw)
	if raw == nil {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}

	s = string(raw)
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return nil
	}
	return &s
}

func nullToNil(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}
