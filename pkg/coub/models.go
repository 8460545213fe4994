package coub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RecoubType is the item type of a re-shared item
const RecoubType = "Coub::Recoub"

// Page is one timeline response envelope
type Page struct {
	TotalPages *int              `json:"total_pages"`
	Page       *int              `json:"page"`
	Coubs      []json.RawMessage `json:"coubs"`
}

// Tag is a single item tag
type Tag struct {
	Value string `json:"value"`
	Title string `json:"title"`
}

// ChannelRef identifies the channel that owns an item
type ChannelRef struct {
	Permalink string `json:"permalink"`
}

// ItemRef points at another item
type ItemRef struct {
	Permalink string `json:"permalink"`
}

// Item is the typed view of one timeline record. Raw keeps the record as
// it was received.
type Item struct {
	Permalink      string          `json:"permalink"`
	Title          string          `json:"title"`
	Type           string          `json:"type"`
	CreatedAt      string          `json:"created_at"`
	Duration       json.RawMessage `json:"duration"`
	NotSafeForWork *bool           `json:"not_safe_for_work"`
	Tags           []Tag           `json:"tags"`
	Channel        *ChannelRef     `json:"channel"`
	RecoubTo       *ItemRef        `json:"recoub_to"`

	Raw json.RawMessage `json:"-"`
}

// IsNSFW reports the content flag, treating a missing flag as false
func (i *Item) IsNSFW() bool {
	return i.NotSafeForWork != nil && *i.NotSafeForWork
}

// IsRepost reports whether the item references another item
func (i *Item) IsRepost() bool {
	return i.RecoubTo != nil
}

// IsRecoubType reports whether the record type itself marks a re-share
func (i *Item) IsRecoubType() bool {
	return i.Type == RecoubType
}

// ChannelPermalink returns the owning channel, or "" when absent
func (i *Item) ChannelPermalink() string {
	if i.Channel == nil {
		return ""
	}
	return i.Channel.Permalink
}

// DurationText renders the duration the way it appears in the source record
func (i *Item) DurationText() string {
	d := bytes.TrimSpace(i.Duration)
	if len(d) == 0 || bytes.Equal(d, []byte("null")) {
		return ""
	}
	if d[0] == '"' {
		if s, err := strconv.Unquote(string(d)); err == nil {
			return s
		}
	}
	return string(d)
}

// DecodePage parses a timeline envelope
func DecodePage(data []byte) (*Page, error) {
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &page, nil
}

// DecodeItem parses one raw record and keeps the raw bytes
func DecodeItem(raw json.RawMessage) (Item, error) {
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return Item{}, fmt.Errorf("failed to parse item: %w", err)
	}
	item.Raw = raw
	return item, nil
}

// Items decodes every record on the page, stopping at the first malformed one
func (p *Page) Items() ([]Item, error) {
	items := make([]Item, 0, len(p.Coubs))
	for idx, raw := range p.Coubs {
		item, err := DecodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", idx, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Total returns total_pages, or 0 when the server omitted it
func (p *Page) Total() int {
	if p.TotalPages == nil {
		return 0
	}
	return *p.TotalPages
}

// Current returns the server-reported page, or fallback when omitted
func (p *Page) Current(fallback int) int {
	if p.Page == nil {
		return fallback
	}
	return *p.Page
}
