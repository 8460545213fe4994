package coub

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the public site root
	BaseURL = "https://coub.com"

	// APIURL is the root of the v2 JSON API
	APIURL = "https://coub.com/api/v2"

	// DefaultOrder is the timeline ordering used when none is configured
	DefaultOrder = "date"

	// MaxPerPage is the largest page size the timeline endpoints honour
	MaxPerPage = 25
)

// Endpoints builds URLs against a (possibly overridden) site and API root
type Endpoints struct {
	BaseURL string
	APIURL  string
}

// DefaultEndpoints returns the production endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{BaseURL: BaseURL, APIURL: APIURL}
}

func (e Endpoints) base() string {
	return strings.TrimRight(e.BaseURL, "/")
}

func (e Endpoints) api() string {
	return strings.TrimRight(e.APIURL, "/")
}

// LikesURL returns the liked-items timeline without paging parameters
func (e Endpoints) LikesURL(order string) string {
	return e.timeline("likes", url.Values{"all": {"true"}, "order_by": {orderOrDefault(order)}})
}

// BookmarksURL returns the bookmarked-items timeline without paging parameters
func (e Endpoints) BookmarksURL(order string) string {
	return e.timeline("favourites", url.Values{"all": {"true"}, "order_by": {orderOrDefault(order)}})
}

// ChannelURL returns a channel timeline without paging parameters
func (e Endpoints) ChannelURL(channel, order string) string {
	return e.timeline("channel/"+url.PathEscape(channel), url.Values{"order_by": {orderOrDefault(order)}})
}

// ChannelPageURL returns the public channel page used as an existence probe
func (e Endpoints) ChannelPageURL(channel string) string {
	return fmt.Sprintf("%s/%s", e.base(), url.PathEscape(channel))
}

// SegmentsURL returns the per-item segments resource
func (e Endpoints) SegmentsURL(permalink string) string {
	return fmt.Sprintf("%s/coubs/%s/segments", e.api(), url.PathEscape(permalink))
}

// ViewURL returns the canonical URL of an item
func (e Endpoints) ViewURL(permalink string) string {
	return fmt.Sprintf("%s/view/%s", e.base(), permalink)
}

func (e Endpoints) timeline(path string, params url.Values) string {
	return fmt.Sprintf("%s/timeline/%s?%s", e.api(), path, params.Encode())
}

// WithPage sets the page and per_page query parameters on a timeline URL.
// perPage is clamped to [1, MaxPerPage].
func WithPage(timelineURL string, page, perPage int) (string, error) {
	u, err := url.Parse(timelineURL)
	if err != nil {
		return "", fmt.Errorf("invalid timeline URL %q: %w", timelineURL, err)
	}

	if perPage <= 0 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func orderOrDefault(order string) string {
	if order == "" {
		return DefaultOrder
	}
	return order
}
