// Package models defines the core data types for the RAG service.
package models

import "time"

// ACL lists the principal identifiers granted a given access level on a
// Document or Folder. Folder ACL entries are qualified "<entity_type>:<entity_id>"
// strings; Document ACL entries are bare entity IDs.
type ACL struct {
	Readers []string `json:"readers,omitempty"`
	Writers []string `json:"writers,omitempty"`
	Admins  []string `json:"admins,omitempty"`
}

// Owner identifies the principal that created a Document or Folder.
type Owner struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// SystemMetadata holds the multi-tenancy bookkeeping fields every Document
// and Folder carries: app scoping, end-user scoping, and folder membership.
// Values are stored as JSONB and queried with containment (@>) predicates;
// a key may hold a scalar or a list — both are supported by the filter
// compiler in internal/auth (BuildSystemMetadataFilter).
type SystemMetadata struct {
	AppID       string         `json:"app_id,omitempty"`
	EndUserID   string         `json:"end_user_id,omitempty"`
	FolderName  string         `json:"folder_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Extra       map[string]any `json:"-"`
}

// Document represents a complete document in the RAG system. Document
// parsing, chunking, embedding, and vector retrieval are handled by an
// external DocumentService collaborator; this type carries only the
// metadata and access-control surface owned by the metadata store.
type Document struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	ContentType    string           `json:"content_type"`
	Owner          Owner            `json:"owner"`
	AccessControl  ACL              `json:"access_control"`
	SystemMetadata SystemMetadata   `json:"system_metadata"`
	DocMetadata    map[string]any   `json:"metadata,omitempty"`
	ChunkCount     int              `json:"chunk_count,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Folder groups documents under a name scoped to (owner, app_id). Folder
// ACLs gate membership and document creation the same way Document ACLs
// gate individual documents.
type Folder struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Owner          Owner          `json:"owner"`
	DocumentIDs    []string       `json:"document_ids"`
	AccessControl  ACL            `json:"access_control"`
	SystemMetadata SystemMetadata `json:"system_metadata"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Graph represents a named knowledge-graph artifact over a set of
// documents. Graph construction/querying is an external collaborator;
// this type is the metadata record the store persists and lists.
type Graph struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Owner          Owner          `json:"owner"`
	AccessControl  ACL            `json:"access_control"`
	SystemMetadata SystemMetadata `json:"system_metadata"`
	DocumentIDs    []string       `json:"document_ids"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// DocumentChunk represents a portion of a document returned by the
// retrieval collaborator. Chunks are the unit of retrieval surfaced to
// the agent's retrieve_chunks tool.
type DocumentChunk struct {
	ID          string         `json:"id"`
	DocumentID  string         `json:"document_id"`
	Index       int            `json:"index"`
	Content     string         `json:"content"`
	Score       float32        `json:"score,omitempty"`
	Metadata    ChunkMetadata  `json:"metadata"`
}

// ChunkMetadata describes a chunk's provenance within its parent document.
type ChunkMetadata struct {
	DocumentName string         `json:"document_name,omitempty"`
	Section      string         `json:"section,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// DocumentSearchRequest is a search request shape for the external
// retrieval collaborator. The retrieve_chunks tool does not use it; it
// sends a rag.ChunkSearchRequest.
type DocumentSearchRequest struct {
	Query       string   `json:"query"`
	K           int      `json:"k,omitempty"`
	DocumentIDs []string `json:"document_ids,omitempty"`
	FolderName  string   `json:"folder_name,omitempty"`
	Filters     map[string]any `json:"filters,omitempty"`
}

// DocumentSearchResponse is the retrieval collaborator's answer.
type DocumentSearchResponse struct {
	Results   []*DocumentChunk `json:"results"`
	QueryTime time.Duration    `json:"query_time"`
}
