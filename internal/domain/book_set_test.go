package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func title(s string) *string { return &s }

func TestBookSetPut(t *testing.T) {
	set := NewBookSet()

	assert.True(t, set.Put(&Book{Identifier: "1", Title: title("a")}))
	assert.True(t, set.Put(&Book{Identifier: "1", Title: title("b")}))
	assert.False(t, set.Put(&Book{Title: title("no id")}))
	assert.False(t, set.Put(nil))

	require.Equal(t, 1, set.Len())
	book, ok := set.Get("1")
	require.True(t, ok)
	assert.Equal(t, "b", *book.Title)
}

func TestBookSetMergeLaterWins(t *testing.T) {
	first := NewBookSet()
	first.Put(&Book{Identifier: "1", Title: title("romantasy")})
	first.Put(&Book{Identifier: "2", Title: title("only romantasy")})

	second := NewBookSet()
	second.Put(&Book{Identifier: "1", Title: title("fantasy")})
	second.Put(&Book{Identifier: "3", Title: title("only fantasy")})

	first.Merge(second)
	first.Merge(nil)

	require.Equal(t, 3, first.Len())
	book, _ := first.Get("1")
	assert.Equal(t, "fantasy", *book.Title)
}

func TestBookSetBooksOrderedByIdentifier(t *testing.T) {
	set := NewBookSet()
	for _, id := range []string{"c", "a", "b"} {
		set.Put(&Book{Identifier: id})
	}

	var ids []string
	for _, book := range set.Books() {
		ids = append(ids, book.Identifier)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Empty(t, NewBookSet().Books())
}
