// Package typesense wraps the hosted search backend: collection management,
// bulk document import and the query path used by the search engine.
package typesense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/typesense/typesense-go/v3/typesense"
	"github.com/typesense/typesense-go/v3/typesense/api"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/models"
)

const queryBy = "title,title_en,tags,source,description"

type Client struct {
	client     *typesense.Client
	httpClient *http.Client
	baseURL    string
	apiKey     string
	collection string
}

func NewClient(cfg *config.Config) *Client {
	baseURL := fmt.Sprintf("%s://%s:%s", cfg.TypesenseProtocol, cfg.TypesenseHost, cfg.TypesensePort)
	typesenseClient := typesense.NewClient(
		typesense.WithServer(baseURL),
		typesense.WithAPIKey(cfg.TypesenseAPIKey),
	)

	return &Client{
		client:     typesenseClient,
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		apiKey:     cfg.TypesenseAPIKey,
		collection: cfg.TypesenseCollection,
	}
}

func (c *Client) Collection() string {
	return c.collection
}

// EnsureCollection creates the model collection when it does not exist yet.
func (c *Client) EnsureCollection(ctx context.Context) error {
	_, err := c.client.Collection(c.collection).Retrieve(ctx)
	if err == nil {
		return nil
	}
	if !strings.Contains(err.Error(), "404") && !strings.Contains(err.Error(), "Not Found") &&
		!strings.Contains(err.Error(), "Not found") {
		return fmt.Errorf("failed to inspect collection %s: %w", c.collection, err)
	}

	schema := &api.CollectionSchema{
		Name: c.collection,
		Fields: []api.Field{
			{Name: "title", Type: "string"},
			{Name: "title_en", Type: "string", Optional: boolPtr(true)},
			{Name: "tags", Type: "string[]", Optional: boolPtr(true), Facet: boolPtr(true)},
			{Name: "source", Type: "string", Facet: boolPtr(true)},
			{Name: "description", Type: "string", Optional: boolPtr(true)},
			{Name: "image_url", Type: "string", Optional: boolPtr(true), Index: boolPtr(false)},
			{Name: "source_url", Type: "string", Optional: boolPtr(true), Index: boolPtr(false)},
		},
	}
	if _, err := c.client.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", c.collection, err)
	}
	return nil
}

// DropCollection deletes the collection, for a from-scratch reindex.
func (c *Client) DropCollection(ctx context.Context) error {
	_, err := c.client.Collection(c.collection).Delete(ctx)
	if err != nil && !strings.Contains(err.Error(), "404") {
		return fmt.Errorf("failed to drop collection %s: %w", c.collection, err)
	}
	return nil
}

// UpsertBatch bulk-imports documents through the JSONL import endpoint.
func (c *Client) UpsertBatch(ctx context.Context, docs []map[string]interface{}) error {
	if len(docs) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
	}

	url := fmt.Sprintf("%s/collections/%s/documents/import?action=upsert", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("X-TYPESENSE-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("import failed: status %d: %s", resp.StatusCode, string(payload))
	}

	// The import endpoint answers 200 even when single documents fail; each
	// response line carries its own success flag.
	scanner := json.NewDecoder(resp.Body)
	line := 0
	for scanner.More() {
		var result struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		if err := scanner.Decode(&result); err != nil {
			break
		}
		if !result.Success {
			return fmt.Errorf("import failed at document %d: %s", line, result.Error)
		}
		line++
	}
	return nil
}

// Search queries the collection and returns the raw documents plus the total
// match count.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.RawRecord, int, error) {
	searchParams := &api.SearchCollectionParams{
		Q:       stringPtr(query),
		QueryBy: stringPtr(queryBy),
		Page:    intPtr(1),
		PerPage: intPtr(limit),
	}

	searchResult, err := c.client.Collection(c.collection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, 0, err
	}

	jsonData, err := json.Marshal(searchResult)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to serialize search result: %w", err)
	}
	var result struct {
		Found int `json:"found"`
		Hits  []struct {
			Document models.RawRecord `json:"document"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, 0, fmt.Errorf("failed to deserialize search result: %w", err)
	}

	docs := make([]models.RawRecord, len(result.Hits))
	for i, hit := range result.Hits {
		docs[i] = hit.Document
	}
	return docs, result.Found, nil
}

// ExportAll pages through every document in the collection.
func (c *Client) ExportAll(ctx context.Context) ([]models.RawRecord, error) {
	var all []models.RawRecord
	page := 1
	perPage := 250

	for {
		url := fmt.Sprintf("%s/collections/%s/documents/search?q=*&per_page=%d&page=%d",
			c.baseURL, c.collection, perPage, page)
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-TYPESENSE-API-KEY", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("export failed: status %d: %s", resp.StatusCode, string(payload))
		}

		var result struct {
			Found int `json:"found"`
			Hits  []struct {
				Document models.RawRecord `json:"document"`
			} `json:"hits"`
		}
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, hit := range result.Hits {
			all = append(all, hit.Document)
		}
		if len(result.Hits) < perPage {
			return all, nil
		}
		page++
	}
}

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func boolPtr(b bool) *bool {
	return &b
}
