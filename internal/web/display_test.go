package web

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precario/internal/display"
	"github.com/roach88/precario/internal/testutil"
)

func decodeFeed(t *testing.T, body []byte) display.Feed {
	t.Helper()
	var feed display.Feed
	require.NoError(t, json.Unmarshal(body, &feed), string(body))
	return feed
}

func TestDisplayQueues_FeedAndETag(t *testing.T) {
	ts := newTestServer(t, []string{"queue_1", "queue_2"})
	ctx := context.Background()

	w := ts.get(t, "/api/display/queues")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeFeed(t, w.Body.Bytes()).Queues)

	_, err := ts.svc.CreateQueue(ctx, testutil.QueueInput("Talho"))
	require.NoError(t, err)
	_, err = ts.svc.CreateQueue(ctx, testutil.QueueInput("Peixaria"))
	require.NoError(t, err)

	w = ts.get(t, "/api/display/queues")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	feed := decodeFeed(t, w.Body.Bytes())
	require.Len(t, feed.Queues, 2)
	assert.Equal(t, "Peixaria", feed.Queues[0].Name)
	assert.Equal(t, "Talho", feed.Queues[1].Name)
	assert.Equal(t, "#ff5252ff", feed.Queues[0].Color)

	w = ts.do(t, request{method: http.MethodGet, path: "/api/display/queues",
		headers: map[string]string{"If-None-Match": etag}})
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	in := testutil.QueueInput("Talho")
	in.Number = 42
	_, err = ts.svc.UpdateQueue(ctx, "queue_1", in)
	require.NoError(t, err)

	w = ts.do(t, request{method: http.MethodGet, path: "/api/display/queues",
		headers: map[string]string{"If-None-Match": etag}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, etag, w.Header().Get("ETag"))
	assert.Equal(t, 42, decodeFeed(t, w.Body.Bytes()).Queues[1].Number)
}

func TestDisplayQueues_Token(t *testing.T) {
	ts := newTestServer(t, nil, func(o *Options) { o.DisplayToken = "tv-secret" })

	w := ts.get(t, "/api/display/queues")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode[any](t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeUnauthorized, env.Error.Code)

	assert.Equal(t, http.StatusUnauthorized, ts.get(t, "/api/display/queues?token=wrong").Code)
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/display/queues?token=tv-secret").Code)

	w = ts.do(t, request{method: http.MethodGet, path: "/api/display/queues",
		headers: map[string]string{"Authorization": "Bearer tv-secret"}})
	assert.Equal(t, http.StatusOK, w.Code)
}
