package client

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovelybooks/collector/internal/textclean"
)

const fullEntry = `{
	"book": {
		"id": "1234",
		"isbn": "9783000000000",
		"title": "Das <i>Lied</i> der Drachen",
		"subtitle": null,
		"summary": "<p>Eine Geschichte über Mut &amp; Freundschaft.</p>",
		"bookTypeDescription": "Taschenbuch",
		"numberOfPages": 512,
		"author": {"id": 77, "name": "Anna Schreiber"},
		"genre": "Fantasy",
		"language": "de",
		"publisher": "Verlag",
		"firstEditionPublicationDate": "2021-03-01",
		"ratingDistribution": [1, 2, 3, 4, 5],
		"averageRating": 4.2,
		"numberOfRatings": 15,
		"numberOfReviews": 6,
		"cover": {"url": "https://img.example/cover.jpg"}
	}
}`

func TestParseBook(t *testing.T) {
	markup := textclean.NewPipeline(true, false, "de")
	parser := NewBookParser(markup, markup)

	book, err := parser.ParseBook(json.RawMessage(fullEntry))
	require.NoError(t, err)

	assert.Equal(t, "1234", book.Identifier)
	assert.Equal(t, "Das Lied der Drachen", *book.Title)
	assert.Nil(t, book.Subtitle)
	assert.Equal(t, "Eine Geschichte über Mut & Freundschaft.", *book.Summary)
	assert.Equal(t, "Anna Schreiber", *book.Author)
	assert.Equal(t, "77", *book.AuthorID)
	assert.Equal(t, 512, *book.Pages)
	assert.Equal(t, 4.2, *book.AverageRating)
	assert.Equal(t, "2021-03-01", *book.FirstPublishingDate)
	assert.JSONEq(t, `[1,2,3,4,5]`, string(book.RatingDistribution))
	assert.Equal(t, "https://img.example/cover.jpg", *book.CoverURL)
	assert.Nil(t, book.Tags)
	assert.False(t, book.HasCommunityInfo())
}

func TestParseBookNumericIdentifierAndEpochDate(t *testing.T) {
	parser := NewBookParser(nil, nil)

	book, err := parser.ParseBook(json.RawMessage(`{"book": {"id": 98765, "firstEditionPublicationDate": 1614556800000, "title": "<b>raw</b>"}}`))
	require.NoError(t, err)

	assert.Equal(t, "98765", book.Identifier)
	assert.Equal(t, "1614556800000", *book.FirstPublishingDate)
	assert.Equal(t, "<b>raw</b>", *book.Title)
	assert.Nil(t, book.Author)
	assert.Nil(t, book.RatingDistribution)
}

func TestParseBookFailures(t *testing.T) {
	parser := NewBookParser(nil, nil)

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"book": `},
		{"no book object", `{"item": {"id": "1"}}`},
		{"missing identifier", `{"book": {"title": "Ohne ID"}}`},
		{"null identifier", `{"book": {"id": null}}`},
		{"invalid identifier", `{"book": {"id": {"nested": true}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := parser.ParseBook(json.RawMessage(tt.raw))
			assert.Nil(t, book)
			assert.True(t, errors.Is(err, ErrExtraction))
		})
	}
}
