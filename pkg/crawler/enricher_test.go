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

func decode(t *testing.T, r coubRecord) coub.Item {
	t.Helper()
	item, err := coub.DecodeItem(r.JSON())
	require.NoError(t, err)
	return item
}

func TestEnrichFormatsMetadata(t *testing.T) {
	e := NewEnricher(&stubAPI{}, false, logger.NewNopLogger())
	rec := coubRecord{
		Permalink: "p1",
		Title:     "Line\r\none&#10;two&#13;",
		Channel:   "maker",
		Tags:      [][2]string{{"cats%0A", "cats"}, {"dogs", "Dogs"}},
	}

	item, err := e.Enrich(context.Background(), decode(t, rec))
	require.NoError(t, err)

	expected := "https://coub.com/view/p1\n" +
		"\tTitle: Lineonetwo\n" +
		"\tTags (encoded): cats%0A,dogs\n" +
		"\tTags: cats,Dogs\n" +
		"\tType: Coub::Simple\n" +
		"\tCreated At: 2020-01-02T03:04:05Z\n" +
		"\tDuration: 9.5\n" +
		"\tNSFW: No\n" +
		"\tMade by: maker\n"
	assert.Equal(t, expected, item.Formatted)
	assert.Equal(t, "https://coub.com/view/p1", item.URL)
	assert.False(t, item.IsRepost)
	assert.Empty(t, item.RepostURL)
	assert.Nil(t, item.Segments)
	assert.JSONEq(t, string(rec.JSON()), string(item.Raw))
}

func TestEnrichRepost(t *testing.T) {
	e := NewEnricher(&stubAPI{}, false, logger.NewNopLogger())
	item, err := e.Enrich(context.Background(), decode(t, coubRecord{Permalink: "r1", RecoubTo: "abc123", NSFW: boolPtr(true)}))
	require.NoError(t, err)

	assert.True(t, item.IsRepost)
	assert.Equal(t, "https://coub.com/view/abc123", item.RepostURL)
	assert.True(t, item.NSFW)
	assert.Contains(t, item.Formatted, "\tNSFW: Yes\n")
}

func TestEnrichSegments(t *testing.T) {
	api := &stubAPI{segments: func(string) (json.RawMessage, error) {
		return json.RawMessage(`{"segments":[1]}`), nil
	}}
	item, err := NewEnricher(api, true, logger.NewNopLogger()).Enrich(context.Background(), decode(t, coubRecord{Permalink: "p1"}))
	require.NoError(t, err)
	require.NotNil(t, item.Segments)
	assert.Equal(t, "p1", item.Segments.Permalink)
	assert.JSONEq(t, `{"segments":[1]}`, string(item.Segments.Data))
}

func TestEnrichSegmentsNotFound(t *testing.T) {
	notFound := func(string) (json.RawMessage, error) {
		return nil, errors.FromStatus(http.StatusNotFound, "")
	}

	t.Run("recoub is silent", func(t *testing.T) {
		log := logger.NewTestLogger()
		e := NewEnricher(&stubAPI{segments: notFound}, true, log)
		item, err := e.Enrich(context.Background(), decode(t, coubRecord{Permalink: "r1", Type: coub.RecoubType, RecoubTo: "o1"}))
		require.NoError(t, err)
		assert.Nil(t, item.Segments)
		assert.Empty(t, log.GetMessages())
	})

	t.Run("original is reported", func(t *testing.T) {
		log := logger.NewTestLogger()
		e := NewEnricher(&stubAPI{segments: notFound}, true, log)
		item, err := e.Enrich(context.Background(), decode(t, coubRecord{Permalink: "o1"}))
		require.NoError(t, err)
		assert.Nil(t, item.Segments)

		warns := log.GetMessagesByLevel("WARN")
		require.Len(t, warns, 1)
		assert.Equal(t, "Segments not found", warns[0].Message)
		assert.Equal(t, "o1", warns[0].Fields["permalink"])
	})
}

func TestEnrichSegmentsOtherErrorPropagates(t *testing.T) {
	api := &stubAPI{segments: func(string) (json.RawMessage, error) {
		return nil, errors.FromStatus(http.StatusForbidden, "")
	}}
	_, err := NewEnricher(api, true, logger.NewNopLogger()).Enrich(context.Background(), decode(t, coubRecord{Permalink: "p1"}))
	require.Error(t, err)
	assert.True(t, errors.IsForbidden(err))
}

func TestEnrichSkipsSegmentsWhenDisabled(t *testing.T) {
	api := &stubAPI{}
	_, err := NewEnricher(api, false, logger.NewNopLogger()).Enrich(context.Background(), decode(t, coubRecord{Permalink: "p1"}))
	require.NoError(t, err)
	assert.Empty(t, api.segCalls)
}
