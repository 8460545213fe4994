package crawler

import (
	"context"
	"fmt"

	"coubcrawl/pkg/coub"
	"coubcrawl/pkg/errors"
	"coubcrawl/pkg/logger"
	"coubcrawl/pkg/output"
)

// Enricher turns raw timeline records into Items
type Enricher struct {
	api       API
	endpoints coub.Endpoints
	segments  bool
	logger    logger.Logger
}

// NewEnricher creates an enricher. When withSegments is set every item
// costs one extra request to the segments endpoint.
func NewEnricher(api API, withSegments bool, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Enricher{
		api:       api,
		endpoints: api.Endpoints(),
		segments:  withSegments,
		logger:    log,
	}
}

// Enrich classifies and formats one record, fetching its segments when
// enabled. A missing segments resource is not an error; any other segments
// failure is returned.
func (e *Enricher) Enrich(ctx context.Context, raw coub.Item) (Item, error) {
	url := e.endpoints.ViewURL(raw.Permalink)

	item := Item{
		Permalink: raw.Permalink,
		URL:       url,
		NSFW:      raw.IsNSFW(),
		Raw:       raw.Raw,
	}

	if raw.IsRepost() {
		item.IsRepost = true
		item.RepostURL = e.endpoints.ViewURL(raw.RecoubTo.Permalink)
	}

	meta := Metadata{
		URL:       url,
		Title:     raw.Title,
		Type:      raw.Type,
		CreatedAt: raw.CreatedAt,
		Duration:  raw.DurationText(),
		NSFW:      item.NSFW,
		Channel:   raw.ChannelPermalink(),
	}
	for _, tag := range raw.Tags {
		meta.EncodedTags = append(meta.EncodedTags, tag.Value)
		meta.Tags = append(meta.Tags, tag.Title)
	}
	item.Formatted = meta.Format()

	if !e.segments {
		return item, nil
	}

	data, err := e.api.FetchSegments(ctx, raw.Permalink, "")
	switch {
	case errors.IsNotFound(err):
		// recoubs have no segments of their own
		if !raw.IsRecoubType() {
			e.logger.WarnWithFields("Segments not found", map[string]interface{}{
				"permalink": raw.Permalink,
				"type":      raw.Type,
			})
		}
	case err != nil:
		return Item{}, fmt.Errorf("fetch segments for %s: %w", raw.Permalink, err)
	default:
		item.Segments = &output.Segments{Permalink: raw.Permalink, Data: data}
	}

	return item, nil
}
