package crawler

import (
	"encoding/json"
	"fmt"
	"strings"

	"coubcrawl/pkg/output"
)

// Item is an enriched timeline record ready to be written
type Item struct {
	Permalink string
	URL       string
	IsRepost  bool
	// RepostURL is the URL of the re-shared item; empty unless IsRepost
	RepostURL string
	NSFW      bool
	Formatted string
	Raw       json.RawMessage
	// Segments is set only when segment download is on and the item has them
	Segments *output.Segments
}

// Entry converts the item for the output store
func (i Item) Entry() output.Entry {
	return output.Entry{
		URL:       i.URL,
		IsRepost:  i.IsRepost,
		Formatted: i.Formatted,
		Raw:       i.Raw,
		Segments:  i.Segments,
	}
}

var linebreaks = strings.NewReplacer("\n", "", "\r", "", "&#13;", "", "&#10;", "")

// RemoveLinebreaks strips raw and HTML-encoded line breaks
func RemoveLinebreaks(s string) string {
	return linebreaks.Replace(s)
}

// Metadata holds the fields of a formatted metadata block
type Metadata struct {
	URL         string
	Title       string
	EncodedTags []string
	Tags        []string
	Type        string
	CreatedAt   string
	Duration    string
	NSFW        bool
	Channel     string
}

// Format renders the human readable metadata block for one item
func (m Metadata) Format() string {
	nsfw := "No"
	if m.NSFW {
		nsfw = "Yes"
	}
	return fmt.Sprintf("%s\n\tTitle: %s\n\tTags (encoded): %s\n\tTags: %s\n\tType: %s\n\tCreated At: %s\n\tDuration: %s\n\tNSFW: %s\n\tMade by: %s\n",
		m.URL,
		RemoveLinebreaks(m.Title),
		RemoveLinebreaks(strings.Join(m.EncodedTags, ",")),
		strings.Join(m.Tags, ","),
		m.Type,
		m.CreatedAt,
		m.Duration,
		nsfw,
		m.Channel,
	)
}

func entries(items []Item) []output.Entry {
	out := make([]output.Entry, len(items))
	for i, item := range items {
		out[i] = item.Entry()
	}
	return out
}
