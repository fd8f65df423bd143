// internal/dataset/elasticsearch.go
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Page size for each search_after request.
const defaultSearchSize = 500

// ElasticsearchSource reads listing documents from an index. Document
// fields use snake_case names of the sheet columns.
type ElasticsearchSource struct {
	client *elasticsearch.Client
	index  string
	size   int
}

func NewElasticsearchSource(client *elasticsearch.Client, index string) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, index: index, size: defaultSearchSize}
}

func (s *ElasticsearchSource) ID() string {
	return "elasticsearch:" + s.index
}

type listingDocument struct {
	Name             string      `json:"name"`
	Type             string      `json:"type"`
	FeeWeekly        interface{} `json:"fee_weekly"`
	PrimaryFaculty   string      `json:"primary_faculty"`
	SecondaryFaculty string      `json:"secondary_faculty"`
	AirCon           string      `json:"aircon"`
	MealPlan         string      `json:"meal_plan"`
	Modules          string      `json:"modules"`
	RoomTypes        stringList  `json:"room_types"`
	Vibes            stringList  `json:"vibes"`
	ImageURL         string      `json:"image_url"`
	VirtualTour      string      `json:"virtual_tour"`
}

// stringList accepts either a JSON array of strings or one comma
// separated string.
type stringList string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = stringList(strings.Join(arr, ","))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = stringList(s)
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source listingDocument `json:"_source"`
			Sort   []interface{}   `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// Fetch pages through the whole index in _doc order with search_after.
func (s *ElasticsearchSource) Fetch(ctx context.Context) ([]Record, error) {
	var (
		out   []Record
		after []interface{}
	)
	for {
		page, err := s.search(ctx, after)
		if err != nil {
			return nil, err
		}
		for _, hit := range page.Hits.Hits {
			out = append(out, recordFromDocument(hit.Source))
		}

		hits := page.Hits.Hits
		if len(hits) < s.size || len(hits[len(hits)-1].Sort) == 0 {
			return out, nil
		}
		after = hits[len(hits)-1].Sort
	}
}

func (s *ElasticsearchSource) search(ctx context.Context, after []interface{}) (*searchResponse, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"size":  s.size,
		"sort":  []string{"_doc"},
	}
	if len(after) > 0 {
		body["search_after"] = after
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s query: %w", s.index, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s failed: %s", s.index, res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", s.index, err)
	}
	return &parsed, nil
}

func recordFromDocument(doc listingDocument) Record {
	return Record{
		ColName:             doc.Name,
		ColType:             doc.Type,
		ColFeeWeekly:        feeText(doc.FeeWeekly),
		ColPrimaryFaculty:   doc.PrimaryFaculty,
		ColSecondaryFaculty: doc.SecondaryFaculty,
		ColAirCon:           doc.AirCon,
		ColMealPlan:         doc.MealPlan,
		ColModules:          doc.Modules,
		ColRoomTypes:        string(doc.RoomTypes),
		ColVibes:            string(doc.Vibes),
		ColImageURL:         doc.ImageURL,
		ColVirtualTour:      doc.VirtualTour,
	}
}

func feeText(v interface{}) string {
	switch fee := v.(type) {
	case nil:
		return ""
	case string:
		return fee
	case float64:
		return fmt.Sprintf("%d", int64(fee))
	default:
		return fmt.Sprint(fee)
	}
}
