package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedOptionApplyDefaults(t *testing.T) {
	var f FeedOption
	f.ApplyDefaults()

	assert.Equal(t, DefaultMaxLength, f.MaxLength)
	assert.Equal(t, DefaultFetchLength, f.FetchLength)
	assert.Equal(t, int64(DefaultInterval), f.Interval)
	assert.Equal(t, int64(DefaultIdleLimit), f.IdleLimit)
}

func TestFeedOptionApplyDefaultsPreservesSetValues(t *testing.T) {
	f := FeedOption{MaxLength: 5, FetchLength: 2, Interval: 60, IdleLimit: 120}
	f.ApplyDefaults()

	assert.Equal(t, 5, f.MaxLength)
	assert.Equal(t, 2, f.FetchLength)
	assert.Equal(t, int64(60), f.Interval)
	assert.Equal(t, int64(120), f.IdleLimit)
}

func TestFeedOptionValidate(t *testing.T) {
	tests := []struct {
		name    string
		feed    FeedOption
		wantErr bool
	}{
		{
			name:    "valid",
			feed:    FeedOption{Label: "foo", Origin: "https://example.com/feed", Extractor: []string{"extract.sh"}},
			wantErr: false,
		},
		{name: "missing label", feed: FeedOption{Origin: "https://example.com", Extractor: []string{"x"}}, wantErr: true},
		{name: "missing extractor", feed: FeedOption{Label: "foo", Origin: "https://example.com"}, wantErr: true},
		{name: "missing origin", feed: FeedOption{Label: "foo", Extractor: []string{"x"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.feed.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestFeedOptionChannelFlattens locks in the #[serde(flatten)] equivalence
// the embedded Channel field exists for (spec.md §4.3, §6): channel fields
// must appear in the same JSON object as the feed's own fields, not nested
// under a "Channel" key.
func TestFeedOptionChannelFlattens(t *testing.T) {
	f := FeedOption{
		Label:     "foo",
		Origin:    "https://example.com",
		Extractor: []string{"x"},
	}
	f.Channel.Title = "My Feed"
	f.Channel.Link = "https://example.com"

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &flat))

	assert.Equal(t, "My Feed", flat["title"])
	assert.Equal(t, "https://example.com", flat["link"])
	_, hasNestedKey := flat["Channel"]
	assert.False(t, hasNestedKey, "Channel must flatten, not nest")

	var roundTrip FeedOption
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.Equal(t, f.Channel.Title, roundTrip.Channel.Title)
}
