package domain

import "strings"

// Category is a genre tag used to query the recommendations listing
type Category string

func (c Category) String() string {
	return string(c)
}

// DefaultCategories are collected when nothing else is configured.
var DefaultCategories = []Category{
	"romantasy",
	"fantasy",
}

// ParseCategories turns raw category names into categories, trimming blanks,
// dropping empty entries and splitting comma-delimited values.
func ParseCategories(raw []string) []Category {
	categories := make([]Category, 0, len(raw))
	seen := make(map[Category]struct{}, len(raw))

	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			name := Category(strings.TrimSpace(part))
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			categories = append(categories, name)
		}
	}

	return categories
}
