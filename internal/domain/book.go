package domain

import "encoding/json"

// Book is one catalog item as it ends up in the output document.
// Optional attributes are pointers so that absent values serialize as null.
type Book struct {
	URL                 *string         `json:"url"`
	Identifier          string          `json:"identifier"`
	Title               *string         `json:"title"`
	Subtitle            *string         `json:"subtitle"`
	Author              *string         `json:"author"`
	AuthorID            *string         `json:"author_id"`
	Summary             *string         `json:"summary"`
	Tags                []string        `json:"tags"`
	ISBN                *string         `json:"isbn"`
	AverageRating       *float64        `json:"average_rating"`
	RatingDistribution  json.RawMessage `json:"rating_distribution"`
	NumberOfRatings     *int            `json:"number_of_ratings"`
	NumberOfReaders     *int            `json:"number_of_readers"`
	NumberOfOwners      *int            `json:"number_of_owners"`
	NumberOfWishlist    *int            `json:"number_of_wishlist"`
	NumberOfReviews     *int            `json:"number_of_reviews"`
	Publisher           *string         `json:"publisher"`
	FirstPublishingDate *string         `json:"first_publishing_date"`
	BookType            *string         `json:"book_type"`
	Pages               *int            `json:"pages"`
	Genre               *string         `json:"genre"`
	Language            *string         `json:"language"`
	SeriesIdentifier    *string         `json:"series_identifier"`
	CoverURL            *string         `json:"cover_url"`
}

// CommunityInfo holds the community counters of a book
type CommunityInfo struct {
	NumberOfReaders  int `json:"numberOfReaders"`
	NumberOfOwners   int `json:"numberOfOwners"`
	NumberOfWishlist int `json:"numberOfWishlist"`
}

// SetTags attaches the tag list fetched by the tags enrichment stage.
func (b *Book) SetTags(tags []string) {
	b.Tags = tags
}

// SetCommunityInfo attaches the three community counters at once.
func (b *Book) SetCommunityInfo(info CommunityInfo) {
	readers, owners, wishlist := info.NumberOfReaders, info.NumberOfOwners, info.NumberOfWishlist
	b.NumberOfReaders = &readers
	b.NumberOfOwners = &owners
	b.NumberOfWishlist = &wishlist
}

// HasCommunityInfo reports whether the community counters were attached.
func (b *Book) HasCommunityInfo() bool {
	return b.NumberOfReaders != nil && b.NumberOfOwners != nil && b.NumberOfWishlist != nil
}
