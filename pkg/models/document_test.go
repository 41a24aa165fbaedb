package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDocument_JSONRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	original := Document{
		ID:          "doc-123",
		Name:        "Test Doc",
		ContentType: "text/markdown",
		Owner:       Owner{ID: "dev-1", Type: "developer"},
		AccessControl: ACL{
			Readers: []string{"dev-1"},
		},
		SystemMetadata: SystemMetadata{
			AppID:      "app-1",
			FolderName: "reports",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		ChunkCount: 3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID = %q, want %q", decoded.ID, original.ID)
	}
	if decoded.SystemMetadata.AppID != original.SystemMetadata.AppID {
		t.Errorf("AppID = %q, want %q", decoded.SystemMetadata.AppID, original.SystemMetadata.AppID)
	}
	if len(decoded.AccessControl.Readers) != 1 {
		t.Errorf("Readers length = %d, want 1", len(decoded.AccessControl.Readers))
	}
}

func TestFolder_Struct(t *testing.T) {
	f := Folder{
		ID:          "folder-1",
		Name:        "reports",
		Owner:       Owner{ID: "dev-1"},
		DocumentIDs: []string{"doc-1", "doc-2"},
	}
	if len(f.DocumentIDs) != 2 {
		t.Errorf("DocumentIDs length = %d, want 2", len(f.DocumentIDs))
	}
}

func TestGraph_Struct(t *testing.T) {
	g := Graph{
		ID:          "graph-1",
		Name:        "acme-kg",
		Owner:       Owner{ID: "dev-1"},
		DocumentIDs: []string{"doc-1"},
	}
	if g.Name != "acme-kg" {
		t.Errorf("Name = %q, want %q", g.Name, "acme-kg")
	}
}

func TestDocumentChunk_Struct(t *testing.T) {
	chunk := DocumentChunk{
		ID:         "chunk-123",
		DocumentID: "doc-456",
		Index:      2,
		Content:    "Chunk content",
		Score:      0.87,
		Metadata:   ChunkMetadata{DocumentName: "Test Doc", Section: "Introduction"},
	}

	if chunk.Index != 2 {
		t.Errorf("Index = %d, want 2", chunk.Index)
	}
	if chunk.Metadata.Section != "Introduction" {
		t.Errorf("Section = %q, want %q", chunk.Metadata.Section, "Introduction")
	}
}

func TestDocumentSearchRequest_Struct(t *testing.T) {
	req := DocumentSearchRequest{
		Query:       "test query",
		K:           10,
		DocumentIDs: []string{"doc-1", "doc-2"},
		FolderName:  "reports",
	}

	if req.Query != "test query" {
		t.Errorf("Query = %q, want %q", req.Query, "test query")
	}
	if req.K != 10 {
		t.Errorf("K = %d, want 10", req.K)
	}
}

func TestDocumentSearchResponse_Struct(t *testing.T) {
	response := DocumentSearchResponse{
		Results: []*DocumentChunk{
			{Score: 0.9},
			{Score: 0.8},
		},
		QueryTime: 50 * time.Millisecond,
	}

	if len(response.Results) != 2 {
		t.Errorf("Results length = %d, want 2", len(response.Results))
	}
	if response.QueryTime != 50*time.Millisecond {
		t.Errorf("QueryTime = %v, want 50ms", response.QueryTime)
	}
}
