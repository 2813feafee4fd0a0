// internal/search/index.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"trip-os/internal/common/logger"
	"trip-os/internal/models"
)

var (
	ErrIndexFailed = errors.New("SEARCH_INDEX_FAILED")
	ErrQueryFailed = errors.New("SEARCH_QUERY_FAILED")
)

// TripDocument is the slim projection of a trip kept in the search
// index. The full document lives in Postgres; this exists only so
// users can find trips by destination or free text.
type TripDocument struct {
	TripID      string `json:"tripId"`
	UserID      string `json:"userId"`
	Destination string `json:"destination"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
}

// TripIndex maintains the trip search index.
type TripIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewTripIndex(client *elasticsearch.Client, index string, log logger.Logger) *TripIndex {
	return &TripIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "trip-index"}),
	}
}

// IndexTrip upserts a trip's search projection.
func (ti *TripIndex) IndexTrip(ctx context.Context, trip *models.Trip) error {
	doc := TripDocument{
		TripID:      trip.ID,
		UserID:      trip.UserID,
		Destination: trip.Destination,
		Title:       trip.Title,
		Summary:     trip.Summary,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      ti.index,
		DocumentID: trip.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, ti.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: index returned %s", ErrIndexFailed, res.Status())
	}
	return nil
}

// DeleteTrip removes a trip from the index. A missing document is not
// an error; the trip may never have been indexed.
func (ti *TripIndex) DeleteTrip(ctx context.Context, tripID string) error {
	req := esapi.DeleteRequest{
		Index:      ti.index,
		DocumentID: tripID,
	}

	res, err := req.Do(ctx, ti.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%w: delete returned %s", ErrIndexFailed, res.Status())
	}
	return nil
}

// Search runs a free-text query over the user's trips, best match
// first.
func (ti *TripIndex) Search(ctx context.Context, userID, query string, size int) ([]TripDocument, error) {
	if size <= 0 || size > 100 {
		size = 20
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  query,
							"fields": []string{"destination^3", "title^2", "summary"},
							"type":   "best_fields",
						},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{"userId": userID},
					},
				},
			},
		},
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{ti.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, ti.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search returned %s", ErrQueryFailed, res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source TripDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	docs := make([]TripDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
