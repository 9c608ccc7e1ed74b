package domain

import "encoding/json"

// PageDescriptor addresses one page of the listing for one category
type PageDescriptor struct {
	Category   Category `json:"category"`
	PageSize   int      `json:"page_size"`
	PageNumber int      `json:"page_number"` // 1-based
}

// BooksPage is one decoded page of the recommendations listing.
type BooksPage struct {
	Page          PageDescriptor    `json:"page"`
	TotalElements int               `json:"total_elements"` // Total books in the category
	Empty         bool              `json:"empty"`          // Source reports no content on this page
	Entries       []json.RawMessage `json:"entries"`        // Raw catalog entries, extracted later
}

// PageRange builds the descriptors for pages 1..count of a category.
func PageRange(category Category, pageSize, count int) []PageDescriptor {
	if count <= 0 {
		return nil
	}

	pages := make([]PageDescriptor, 0, count)
	for pageNumber := 1; pageNumber <= count; pageNumber++ {
		pages = append(pages, PageDescriptor{
			Category:   category,
			PageSize:   pageSize,
			PageNumber: pageNumber,
		})
	}
	return pages
}
