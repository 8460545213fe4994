package coub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItemOptionalFields(t *testing.T) {
	raw := json.RawMessage(`{"permalink":"p1","title":"t","type":"Coub::Simple","duration":9.92,"not_safe_for_work":null,"recoub_to":null,"channel":{"permalink":"me"},"tags":[{"value":"a%20b","title":"a b"}]}`)

	item, err := DecodeItem(raw)
	require.NoError(t, err)

	assert.Equal(t, "p1", item.Permalink)
	assert.False(t, item.IsNSFW())
	assert.False(t, item.IsRepost())
	assert.False(t, item.IsRecoubType())
	assert.Equal(t, "me", item.ChannelPermalink())
	assert.Equal(t, "9.92", item.DurationText())
	assert.Equal(t, []Tag{{Value: "a%20b", Title: "a b"}}, item.Tags)
	assert.Equal(t, string(raw), string(item.Raw))
}

func TestDecodeItemRepostAndFlags(t *testing.T) {
	item, err := DecodeItem(json.RawMessage(`{"permalink":"r1","type":"Coub::Recoub","not_safe_for_work":true,"recoub_to":{"permalink":"abc123"}}`))
	require.NoError(t, err)

	assert.True(t, item.IsNSFW())
	assert.True(t, item.IsRepost())
	assert.True(t, item.IsRecoubType())
	assert.Equal(t, "abc123", item.RecoubTo.Permalink)
	assert.Equal(t, "", item.ChannelPermalink())
	assert.Equal(t, "", item.DurationText())
}

func TestDurationText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`10`, "10"},
		{`"12.5"`, "12.5"},
		{`null`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		item := Item{Duration: json.RawMessage(tt.raw)}
		assert.Equal(t, tt.want, item.DurationText(), tt.raw)
	}
}

func TestDecodePage(t *testing.T) {
	page, err := DecodePage([]byte(`{"total_pages":2,"page":1,"coubs":[{"permalink":"a"},{"permalink":"b"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total())
	assert.Equal(t, 1, page.Current(7))

	items, err := page.Items()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[1].Permalink)
}

func TestDecodePageMissingCounters(t *testing.T) {
	page, err := DecodePage([]byte(`{"coubs":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total())
	assert.Equal(t, 4, page.Current(4))
	assert.Empty(t, page.Coubs)
}

func TestPageItemsMalformed(t *testing.T) {
	page, err := DecodePage([]byte(`{"coubs":[{"permalink":"a"},{"permalink":5}]}`))
	require.NoError(t, err)
	_, err = page.Items()
	assert.Error(t, err)
}
