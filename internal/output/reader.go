package output

import (
	"encoding/json"
	"fmt"
	"io"

	"lovelybooks/collector/internal/domain"
)

type document struct {
	Books []*domain.Book `json:"books"`
}

// ReadDocument loads the books of a previously written document.
func ReadDocument(r io.Reader) ([]*domain.Book, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.Books == nil {
		return nil, fmt.Errorf("document has no books array")
	}
	return doc.Books, nil
}
