package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"evidly-workers/internal/common/database"
	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"
)

const DefaultIndex = "report-history"

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":              {"type": "keyword"},
      "reportType":      {"type": "keyword"},
      "locationId":      {"type": "keyword"},
      "jurisdictionKey": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "generatedAt":     {"type": "date"},
      "generatedBy":     {"type": "text"},
      "sections":        {"type": "text"}
    }
  }
}`

// ESIndex mirrors history entries into Elasticsearch for free-text search.
// Postgres stays the system of record; the index may lag or miss entries.
type ESIndex struct {
	es    *database.ElasticsearchClient
	index string
}

func NewESIndex(es *database.ElasticsearchClient, index string) *ESIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &ESIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping when missing.
func (x *ESIndex) EnsureIndex(ctx context.Context) error {
	return x.es.EnsureIndex(ctx, x.index, indexMapping)
}

func (x *ESIndex) Index(ctx context.Context, entry models.ReportHistoryEntry) error {
	body, err := json.Marshal(entry.Clone())
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	client := x.es.Client
	res, err := client.Index(x.index, bytes.NewReader(body),
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(entry.ID),
		client.Index.WithOpType("create"),
	)
	if err != nil {
		return fmt.Errorf("index history entry %s: %w", entry.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index history entry %s: %s", entry.ID, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.ReportHistoryEntry `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (x *ESIndex) Search(ctx context.Context, locationID, query string, limit int) ([]models.ReportHistoryEntry, error) {
	body, err := json.Marshal(buildSearchQuery(locationID, query))
	if err != nil {
		return nil, errors.NewHistorySearchFailedError(err)
	}

	client := x.es.Client
	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(x.index),
		client.Search.WithBody(bytes.NewReader(body)),
		client.Search.WithSize(ClampLimit(limit)),
	)
	if err != nil {
		return nil, errors.NewHistorySearchFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewHistorySearchFailedError(fmt.Errorf("search %s: %s", x.index, res.Status()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewHistorySearchFailedError(fmt.Errorf("decode search response: %w", err))
	}

	out := make([]models.ReportHistoryEntry, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		out = append(out, hit.Source.Clone())
	}
	return out, nil
}

func buildSearchQuery(locationID, query string) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"locationId": locationID}},
		},
	}
	if q := strings.TrimSpace(query); q != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q,
					"fields": []string{"jurisdictionKey", "sections", "generatedBy"},
				},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"generatedAt": map[string]interface{}{"order": "desc"}},
		},
	}
}
