package display

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precario/internal/catalog"
)

func fixtureQueues() []catalog.Queue {
	return []catalog.Queue{
		{
			ID:              "queue_1",
			Name:            "Peixaria",
			Number:          7,
			Icon:            57534,
			BackgroundColor: catalog.DefaultQueueColor,
			VideoURL:        "https://example.com/live.m3u8",
			SoundVolume:     100,
			Velocity:        50,
			HasNews:         true,
		},
		{
			ID:              "queue_2",
			Name:            "Talho & Charcutaria",
			Number:          12,
			BackgroundColor: 0xFF0000FF,
			VideoURL:        "https://example.com/live.m3u8",
			VideoVolume:     30,
			SoundVolume:     80,
			Velocity:        40,
		},
	}
}

func TestFeed_CanonicalGolden(t *testing.T) {
	feed := BuildFeed(fixtureQueues())

	canonical, err := MarshalCanonical(feed.canonicalValue())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "feed_canonical", canonical)
}

func TestFeed_CanonicalMatchesJSONEncoding(t *testing.T) {
	feed := BuildFeed(fixtureQueues())

	canonical, err := MarshalCanonical(feed.canonicalValue())
	require.NoError(t, err)

	var fromCanonical, fromJSON map[string]any
	require.NoError(t, json.Unmarshal(canonical, &fromCanonical))
	raw, err := json.Marshal(feed)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &fromJSON))

	assert.Equal(t, fromJSON, fromCanonical, "fingerprint must cover exactly what is served")
}

func TestBuildFeed_Empty(t *testing.T) {
	feed := BuildFeed(nil)
	raw, err := json.Marshal(feed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"queues":[]}`, string(raw))
}

func TestFeed_ETag(t *testing.T) {
	a, err := BuildFeed(fixtureQueues()).ETag()
	require.NoError(t, err)
	b, err := BuildFeed(fixtureQueues()).ETag()
	require.NoError(t, err)
	assert.Equal(t, a, b, "same content, same tag")
	assert.Regexp(t, `^"[0-9a-f]{64}"$`, a)

	changed := fixtureQueues()
	changed[0].Number++
	c, err := BuildFeed(changed).ETag()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestMatchesETag(t *testing.T) {
	etag := `"abc"`
	assert.True(t, MatchesETag(`"abc"`, etag))
	assert.True(t, MatchesETag(`"x", "abc"`, etag))
	assert.True(t, MatchesETag(`W/"abc"`, etag))
	assert.True(t, MatchesETag(`*`, etag))
	assert.False(t, MatchesETag(`"abd"`, etag))
	assert.False(t, MatchesETag(``, etag))
}
