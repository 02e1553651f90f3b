package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchSource reads each dataset from a fixed index with match_all.
type ElasticsearchSource struct {
	client  *elasticsearch.Client
	indices map[Kind]string
	maxRows int
}

func NewElasticsearchSource(client *elasticsearch.Client, indices map[string]string, maxRows int) *ElasticsearchSource {
	byKind := make(map[Kind]string, len(indices))
	for key, index := range indices {
		if k, err := ParseKind(key); err == nil {
			byKind[k] = index
		}
	}
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &ElasticsearchSource{client: client, indices: byKind, maxRows: maxRows}
}

func (s *ElasticsearchSource) Name() string { return "elasticsearch" }

func (s *ElasticsearchSource) Load(ctx context.Context, kind Kind) (*Table, error) {
	index, ok := s.indices[kind]
	if !ok {
		return nil, fmt.Errorf("no index configured for dataset %s", kind)
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"size":  s.maxRows,
		"sort":  []interface{}{"_doc"},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", index, res.Status())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode %s: %w", index, err)
	}

	docs := make([]map[string]interface{}, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		docs = append(docs, hit.Source)
	}

	columns := documentColumns(kind, docs)
	rows := make([]Row, len(docs))
	for i, doc := range docs {
		row := make(Row, len(columns))
		for j, col := range columns {
			row[j] = documentCell(doc[col])
		}
		rows[i] = row
	}

	return NewTable(columns, rows), nil
}

// documentColumns puts region, district and the entity name first, then the
// remaining field names in sorted order.
func documentColumns(kind Kind, docs []map[string]interface{}) []string {
	seen := make(map[string]bool)
	for _, doc := range docs {
		for k := range doc {
			seen[k] = true
		}
	}

	var columns []string
	for _, lead := range kind.FilterColumns() {
		if seen[lead] {
			columns = append(columns, lead)
			delete(seen, lead)
		}
	}

	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)

	return append(columns, rest...)
}

func documentCell(v interface{}) interface{} {
	switch x := v.(type) {
	case nil, float64, bool:
		return x
	case string:
		return ParseCell(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(b)
	}
}
