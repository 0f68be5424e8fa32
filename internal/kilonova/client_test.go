package kilonova

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `{
	"status": "success",
	"data": {
		"submissions": [
			{"id": 12, "created_at": "2024-05-01T13:00:05.250+03:00", "user_id": 7, "problem_id": 3,
			 "contest_id": 2, "language": "cpp17", "code_size": 512, "status": "finished",
			 "compile_error": false, "max_time": 0.0456, "max_memory": 2048, "score": 80,
			 "score_precision": 0, "submission_type": "classic", "icpc_verdict": null},
			{"id": 11, "created_at": "2024-05-01T09:59:00Z", "user_id": 8, "problem_id": 3,
			 "contest_id": null, "language": "py3", "status": "working", "max_time": -1,
			 "max_memory": -1, "score": 0}
		],
		"users": {"7": {"id": 7, "name": "alice", "display_name": "Alice"}},
		"problems": {"3": {"id": 3, "name": "Sum", "default_points": 0, "time_limit": 0.5,
			"memory_limit": 65536, "source_credits": "", "score_precision": 0,
			"published_at": "2024-04-30T12:00:00Z", "scoring_strategy": "max_submission"}}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(Config{BaseURL: server.URL + "/api/submissions/get", Limit: 2, ProblemID: 3})
	c.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
	}
	return c
}

func TestFetchPageQueryAndDecode(t *testing.T) {
	var query map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/submissions/get", r.URL.Path)
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(samplePage))
	})

	page, err := c.FetchPage(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"ascending":  "false",
		"limit":      "2",
		"ordering":   "id",
		"offset":     "4",
		"problem_id": "3",
	}, query)

	require.Len(t, page.Submissions, 2)
	assert.True(t, page.Submissions[0].Finished())
	assert.False(t, page.Submissions[1].Finished())
	assert.Equal(t, "alice", page.Users["7"].Name)
	assert.Equal(t, 0.5, page.Problems["3"].TimeLimit)
}

func TestFetchPageRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusBadGateway)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Write([]byte(samplePage))
		}
	})

	page, err := c.FetchPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, page.Submissions, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchPageClientErrorIsPermanent(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad offset", http.StatusBadRequest)
	})

	_, err := c.FetchPage(context.Background(), 0)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchPageGivesUp(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.FetchPage(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestFetchPageCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPage(ctx, 0)
	require.Error(t, err)
}
