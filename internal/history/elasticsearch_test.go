package history

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"evidly-workers/internal/common/database"
	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES records requests and answers like a single-node cluster.
type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	exists   bool
	status   int
	hits     []models.ReportHistoryEntry
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	f.bodies[key] = string(body)

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"type":"cluster_block_exception"}}`))
		return
	}

	switch {
	case r.Method == http.MethodHead:
		if f.exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasSuffix(r.URL.Path, "/_search"):
		hits := make([]map[string]interface{}, 0, len(f.hits))
		for _, h := range f.hits {
			hits = append(hits, map[string]interface{}{"_id": h.ID, "_source": h})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{"total": map[string]interface{}{"value": len(hits)}, "hits": hits},
		})
	case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/_doc/"):
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	default:
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	}
}

func setupFakeES(t *testing.T, fake *fakeES) *ESIndex {
	t.Helper()
	fake.bodies = map[string]string{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewESIndex(&database.ElasticsearchClient{Client: client}, "")
}

func TestESIndex_EnsureIndexCreatesMissing(t *testing.T) {
	fake := &fakeES{}
	idx := setupFakeES(t, fake)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Equal(t, []string{"HEAD /report-history", "PUT /report-history"}, fake.requests)
	assert.Contains(t, fake.bodies["PUT /report-history"], `"locationId"`)
}

func TestESIndex_EnsureIndexExisting(t *testing.T) {
	fake := &fakeES{exists: true}
	idx := setupFakeES(t, fake)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Equal(t, []string{"HEAD /report-history"}, fake.requests)
}

func TestESIndex_Index(t *testing.T) {
	fake := &fakeES{}
	idx := setupFakeES(t, fake)

	entry := createEntry("h-1", "downtown", testNow, models.SectionFacilityInfo)
	require.NoError(t, idx.Index(context.Background(), entry))

	require.Equal(t, []string{"PUT /report-history/_doc/h-1"}, fake.requests)
	var indexed models.ReportHistoryEntry
	require.NoError(t, json.Unmarshal([]byte(fake.bodies["PUT /report-history/_doc/h-1"]), &indexed))
	assert.Equal(t, "downtown", indexed.LocationID)
	assert.Equal(t, []models.Section{models.SectionFacilityInfo}, indexed.Sections)
}

func TestESIndex_IndexError(t *testing.T) {
	fake := &fakeES{status: http.StatusForbidden}
	idx := setupFakeES(t, fake)

	err := idx.Index(context.Background(), createEntry("h-1", "downtown", testNow))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestESIndex_Search(t *testing.T) {
	fake := &fakeES{hits: []models.ReportHistoryEntry{
		createEntry("h-2", "downtown", testNow, models.SectionSelfAudit),
	}}
	idx := setupFakeES(t, fake)

	entries, err := idx.Search(context.Background(), "downtown", "self audit", 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "h-2", entries[0].ID)

	var query map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(fake.bodies["POST /report-history/_search"]), &query))
	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filter := boolQuery["filter"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "downtown", filter["term"].(map[string]interface{})["locationId"])
	assert.Contains(t, boolQuery, "must")
}

func TestESIndex_SearchFailure(t *testing.T) {
	fake := &fakeES{status: http.StatusServiceUnavailable}
	idx := setupFakeES(t, fake)

	_, err := idx.Search(context.Background(), "downtown", "generic", 5)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeHistorySearchFailed))
}

func TestBuildSearchQuery_EmptyQueryOnlyFilters(t *testing.T) {
	q := buildSearchQuery("airport", "  ")
	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.NotContains(t, boolQuery, "must")
	assert.Contains(t, boolQuery, "filter")
}
