package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

const DefaultIndexName = "forum_posts"

// ElasticsearchIndexer writes each document under a stable id, so indexing
// twice overwrites instead of duplicating.
type ElasticsearchIndexer struct {
	baseURL string
	index   string
	client  *http.Client
	ensured bool
}

func NewElasticsearchIndexer(rawURL, index string) *ElasticsearchIndexer {
	if index == "" {
		index = DefaultIndexName
	}
	return &ElasticsearchIndexer{
		baseURL: normalizeURL(rawURL),
		index:   toIndexName(index),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (e *ElasticsearchIndexer) Index(ctx context.Context, doc domain.SearchDocument) error {
	if !e.ensured {
		if err := e.EnsureIndex(ctx); err != nil {
			return err
		}
	}
	typ := doc.Type
	if typ == "" {
		typ = DocumentPost
	}
	body, err := json.Marshal(map[string]any{
		"type":      typ,
		"id":        doc.ID,
		"title":     doc.Title,
		"body":      doc.Body,
		"author_id": doc.AuthorID,
		"forum_id":  doc.ForumID,
	})
	if err != nil {
		return err
	}
	docID := url.PathEscape(typ + "_" + strconv.FormatInt(doc.ID, 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.baseURL+"/"+e.index+"/_doc/"+docID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elasticsearch index %s failed: status=%d body=%s", docID, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

// EnsureIndex creates the index, treating "already exists" as success.
func (e *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.baseURL+"/"+e.index, nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		e.ensured = true
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), "resource_already_exists_exception") {
		e.ensured = true
		return nil
	}
	return fmt.Errorf("elasticsearch create index failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// ServerVersion pings the cluster root and returns its version number.
func (e *ElasticsearchIndexer) ServerVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/", nil)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var root struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.Unmarshal(body, &root); err != nil {
		return "", err
	}
	return root.Version.Number, nil
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "http://localhost:9200"
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return strings.TrimRight(raw, "/")
	}
	return "http://" + strings.TrimRight(raw, "/")
}

func toIndexName(name string) string {
	return url.PathEscape(strings.ToLower(strings.TrimSpace(name)))
}
