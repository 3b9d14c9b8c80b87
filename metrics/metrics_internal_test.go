package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /blog/share/{postId}/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	handler := Middleware(mux)

	for _, path := range []string{"/blog/share/a/", "/blog/share/b/", "/nowhere"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /blog/share/{postId}/", "404"),
	), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404"),
	), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(httpRequestDuration))
}

func TestBusinessCounters(t *testing.T) {
	searchesTotal.Reset()

	comments := testutil.ToFloat64(commentsCreatedTotal)
	shares := testutil.ToFloat64(postsSharedTotal)

	CommentCreated()
	PostShared()
	PostShared()
	Searched("trigram")

	assert.InDelta(t, comments+1, testutil.ToFloat64(commentsCreatedTotal), 0)
	assert.InDelta(t, shares+2, testutil.ToFloat64(postsSharedTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(searchesTotal.WithLabelValues("trigram")), 0)
}
