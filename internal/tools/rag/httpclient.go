package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// HTTPDocumentService is a thin client binding DocumentService to a
// remote retrieval engine (parsing, chunking, embedding, vector search,
// and knowledge-graph construction all live on the other end of baseURL;
// this type forwards requests and decodes responses, nothing more),
// following the same "remote Morphik-style API" shape
// GraphAPIRetrieveTool already names for the graph_mode=api case.
type HTTPDocumentService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDocumentService builds a DocumentService client against baseURL.
func NewHTTPDocumentService(baseURL string, client *http.Client) *HTTPDocumentService {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPDocumentService{baseURL: baseURL, client: client}
}

func (c *HTTPDocumentService) do(ctx context.Context, method, path string, auth models.AuthContext, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Entity-Type", string(auth.EntityType))
	req.Header.Set("X-Entity-Id", auth.EntityID)
	if auth.AppID != "" {
		req.Header.Set("X-App-Id", auth.AppID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("retrieval request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("retrieval engine returned %d: %s", resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode retrieval response: %w", err)
	}
	return nil
}

func (c *HTTPDocumentService) SearchChunks(ctx context.Context, auth models.AuthContext, req ChunkSearchRequest) (*models.DocumentSearchResponse, error) {
	var out models.DocumentSearchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/chunks/search", auth, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPDocumentService) DocumentContent(ctx context.Context, auth models.AuthContext, documentID string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	body := struct {
		DocumentID string `json:"document_id"`
	}{DocumentID: documentID}
	if err := c.do(ctx, http.MethodPost, "/v1/documents/content", auth, body, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

func (c *HTTPDocumentService) AnalyzeDocument(ctx context.Context, auth models.AuthContext, documentID, analysisType string) (string, error) {
	var out struct {
		Analysis string `json:"analysis"`
	}
	body := struct {
		DocumentID   string `json:"document_id"`
		AnalysisType string `json:"analysis_type"`
	}{DocumentID: documentID, AnalysisType: analysisType}
	if err := c.do(ctx, http.MethodPost, "/v1/documents/analyze", auth, body, &out); err != nil {
		return "", err
	}
	return out.Analysis, nil
}

func (c *HTTPDocumentService) QueryGraph(ctx context.Context, auth models.AuthContext, req GraphQueryRequest) (string, error) {
	var out struct {
		Result string `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/graph/query", auth, req, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (c *HTTPDocumentService) RetrieveFromGraphAPI(ctx context.Context, auth models.AuthContext, req GraphQueryRequest) (string, error) {
	var out struct {
		Result string `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/graph/api_retrieve", auth, req, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (c *HTTPDocumentService) SaveToMemory(ctx context.Context, auth models.AuthContext, key, value string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	body := struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}{Key: key, Value: value}
	if err := c.do(ctx, http.MethodPost, "/v1/memory/save", auth, body, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
