package crawler

import (
	"strings"
)

// Category names a timeline to crawl: one of the reserved names or a
// channel permalink
type Category string

// Reserved categories
const (
	Liked     Category = "liked"
	Bookmarks Category = "bookmarks"
)

// Kind classifies a category
type Kind string

const (
	KindLiked     Kind = "liked"
	KindBookmarks Kind = "bookmarks"
	KindChannel   Kind = "channel"
)

// Kind returns the category's kind
func (c Category) Kind() Kind {
	switch c {
	case Liked:
		return KindLiked
	case Bookmarks:
		return KindBookmarks
	default:
		return KindChannel
	}
}

// IsReserved reports whether the category needs an access token
func (c Category) IsReserved() bool {
	return c == Liked || c == Bookmarks
}

func (c Category) String() string {
	return string(c)
}

// ParseCategories normalizes user input. Each argument may itself hold a
// comma separated list. Names are trimmed and lower-cased, empty names are
// dropped and duplicates keep their first position.
func ParseCategories(args ...string) []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			name := Category(strings.ToLower(strings.TrimSpace(part)))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
