package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []Category
	}{
		{"single list", []string{"liked,bookmarks,channelone"}, []Category{Liked, Bookmarks, "channelone"}},
		{"mixed case and spaces", []string{" Liked , Just.For.Kicks "}, []Category{Liked, "just.for.kicks"}},
		{"separate args", []string{"a", "b,c"}, []Category{"a", "b", "c"}},
		{"duplicates keep first", []string{"b,a,B,a"}, []Category{"b", "a"}},
		{"empties dropped", []string{",, ,", ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategories(tt.args...))
		})
	}
}

func TestCategoryKind(t *testing.T) {
	assert.Equal(t, KindLiked, Liked.Kind())
	assert.Equal(t, KindBookmarks, Bookmarks.Kind())
	assert.Equal(t, KindChannel, Category("demo").Kind())
	assert.True(t, Liked.IsReserved())
	assert.False(t, Category("demo").IsReserved())
}

func TestExpectedPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 25, 1},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{50, 25, 2},
		{51, 25, 3},
		{3, 1, 3},
		{30, 0, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpectedPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestRemoveLinebreaks(t *testing.T) {
	assert.Equal(t, "abcd", RemoveLinebreaks("a\nb\r&#13;c&#10;d"))
	assert.Equal(t, "plain", RemoveLinebreaks("plain"))
}
