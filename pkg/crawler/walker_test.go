package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"coubcrawl/pkg/coub"
	"coubcrawl/pkg/errors"
	"coubcrawl/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI serves canned pages in request order
type stubAPI struct {
	pages    []pageOrErr
	segments func(permalink string) (json.RawMessage, error)
	fetched  []string
	segCalls []string
}

type pageOrErr struct {
	page *coub.Page
	err  error
}

func makePage(total, current int, recs ...coubRecord) pageOrErr {
	p := &coub.Page{}
	if total >= 0 {
		p.TotalPages = &total
	}
	if current > 0 {
		p.Page = &current
	}
	for _, r := range recs {
		p.Coubs = append(p.Coubs, r.JSON())
	}
	return pageOrErr{page: p}
}

func (s *stubAPI) FetchPage(ctx context.Context, url, token string) (*coub.Page, error) {
	s.fetched = append(s.fetched, url)
	idx := len(s.fetched) - 1
	if idx >= len(s.pages) {
		return &coub.Page{}, nil
	}
	return s.pages[idx].page, s.pages[idx].err
}

func (s *stubAPI) FetchSegments(ctx context.Context, permalink, token string) (json.RawMessage, error) {
	s.segCalls = append(s.segCalls, permalink)
	if s.segments == nil {
		return json.RawMessage(`{}`), nil
	}
	return s.segments(permalink)
}

func (s *stubAPI) Probe(ctx context.Context, url string) error { return nil }

func (s *stubAPI) Endpoints() coub.Endpoints { return coub.DefaultEndpoints() }

func walkPlan() Plan {
	return Plan{Category: "demo", URL: coub.DefaultEndpoints().ChannelURL("demo", ""), PageLimit: 25, StartPage: 1}
}

func newTestWalker(api API, nsfwOnly, segments bool, log logger.Logger) *Walker {
	return NewWalker(api, NewEnricher(api, segments, log), nsfwOnly, log)
}

func TestWalkStopsOnLastPage(t *testing.T) {
	api := &stubAPI{pages: []pageOrErr{
		makePage(2, 1, records("a", 25)...),
		makePage(2, 2, records("b", 3)...),
	}}
	result := newTestWalker(api, false, false, logger.NewNopLogger()).Walk(context.Background(), walkPlan())

	assert.Equal(t, StopLastPage, result.Stop)
	assert.NoError(t, result.Err)
	assert.Equal(t, 2, result.Pages)
	assert.Len(t, result.Items, 28)
	assert.Len(t, api.fetched, 2)
	assert.Contains(t, api.fetched[1], "page=2")
}

func TestWalkStopsOnEmptyPageWhenTotalUnknown(t *testing.T) {
	api := &stubAPI{pages: []pageOrErr{
		makePage(-1, 0, records("a", 25)...),
		makePage(-1, 0, records("b", 5)...),
		makePage(-1, 0),
	}}
	result := newTestWalker(api, false, false, logger.NewNopLogger()).Walk(context.Background(), walkPlan())

	assert.Equal(t, StopEmptyPage, result.Stop)
	assert.Equal(t, 2, result.Pages)
	assert.Len(t, result.Items, 30)
	assert.Len(t, api.fetched, 3)
}

func TestWalkEmptyPageBeforeReportedTotal(t *testing.T) {
	api := &stubAPI{pages: []pageOrErr{
		makePage(5, 1, records("a", 25)...),
		makePage(5, 2),
		makePage(5, 3, records("c", 3)...),
	}}
	result := newTestWalker(api, false, false, logger.NewNopLogger()).Walk(context.Background(), walkPlan())

	assert.Equal(t, StopEmptyPage, result.Stop)
	assert.NoError(t, result.Err)
	assert.Equal(t, 1, result.Pages)
	assert.Len(t, result.Items, 25)
	assert.Len(t, api.fetched, 2)
}

func TestWalkEmptyFirstPage(t *testing.T) {
	api := &stubAPI{pages: []pageOrErr{makePage(0, 1)}}
	result := newTestWalker(api, false, false, logger.NewNopLogger()).Walk(context.Background(), walkPlan())

	assert.Equal(t, StopEmptyPage, result.Stop)
	assert.Equal(t, 0, result.Pages)
	assert.Empty(t, result.Items)
}

func TestWalkFilterDoesNotAffectContinuation(t *testing.T) {
	page2 := records("b", 3)
	page2[1].NSFW = boolPtr(true)
	api := &stubAPI{pages: []pageOrErr{
		makePage(2, 1, records("a", 25)...),
		makePage(2, 2, page2...),
	}}

	result := newTestWalker(api, true, false, logger.NewNopLogger()).Walk(context.Background(), walkPlan())

	assert.Equal(t, StopLastPage, result.Stop)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 28, result.RawItems)
	assert.Equal(t, 27, result.Filtered)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "b2", result.Items[0].Permalink)
}

func TestWalkExpectedPagesOverridesTotal(t *testing.T) {
	// the server under-reports the page count
	api := &stubAPI{pages: []pageOrErr{
		makePage(1, 1, records("a", 25)...),
		makePage(1, 2, records("b", 25)...),
		makePage(1, 3, records("c", 1)...),
	}}
	plan := walkPlan()
	plan.ExpectedPages = 3

	result := newTestWalker(api, false, false, logger.NewNopLogger()).Walk(context.Background(), plan)
	assert.Equal(t, StopLastPage, result.Stop)
	assert.Equal(t, 3, result.Pages)
	assert.Len(t, result.Items, 51)
}

func TestWalkMaxPages(t *testing.T) {
	api := &stubAPI{pages: []pageOrErr{
		makePage(5, 1, records("a", 25)...),
		makePage(5, 2, records("b", 25)...),
	}}
	plan := walkPlan()
	plan.MaxPages = 1

	result := newTestWalker(api, false, false, logger.NewNopLogger()).Walk(context.Background(), plan)
	assert.Equal(t, StopPageLimit, result.Stop)
	assert.Equal(t, 1, result.Pages)
	assert.Len(t, api.fetched, 1)
}

func TestWalkFetchErrorAbortsAndKeepsEarlierPages(t *testing.T) {
	api := &stubAPI{pages: []pageOrErr{
		makePage(3, 1, records("a", 25)...),
		{err: errors.FromStatus(http.StatusBadGateway, "")},
	}}
	log := logger.NewTestLogger()

	result := newTestWalker(api, false, false, log).Walk(context.Background(), walkPlan())
	assert.Equal(t, StopAborted, result.Stop)
	require.Error(t, result.Err)
	assert.Equal(t, http.StatusBadGateway, errors.StatusCode(result.Err))
	assert.Len(t, result.Items, 25)
	assert.Equal(t, 1, result.Pages)
	assert.Len(t, api.fetched, 2)
	assert.True(t, log.HasMessage("Crawl aborted"))
}

func TestWalkSegmentErrorDropsWholePage(t *testing.T) {
	api := &stubAPI{
		pages: []pageOrErr{
			makePage(2, 1, records("a", 2)...),
			makePage(2, 2, records("b", 3)...),
		},
		segments: func(permalink string) (json.RawMessage, error) {
			if permalink == "b2" {
				return nil, errors.FromStatus(http.StatusInternalServerError, "")
			}
			return json.RawMessage(`{"s":1}`), nil
		},
	}

	result := newTestWalker(api, false, true, logger.NewNopLogger()).Walk(context.Background(), walkPlan())
	assert.Equal(t, StopAborted, result.Stop)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, api.segCalls)
}

func TestWalkMalformedItemAborts(t *testing.T) {
	bad := &coub.Page{Coubs: []json.RawMessage{json.RawMessage(`{"permalink":7}`)}}
	api := &stubAPI{pages: []pageOrErr{{page: bad}}}

	result := newTestWalker(api, false, false, logger.NewNopLogger()).Walk(context.Background(), walkPlan())
	assert.Equal(t, StopAborted, result.Stop)
	assert.Error(t, result.Err)
}
