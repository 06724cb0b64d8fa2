package models

import "strings"

// Document is a source handed to ingestion: an uploaded file or a crawled page.
type Document struct {
	ID       string
	URL      string
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// ProcessedDocument is a Document split into chunks ready to embed.
type ProcessedDocument struct {
	Document
	Chunks []string
}

// DocumentRecord is a row of the metadata store. Tags keep their stored order.
type DocumentRecord struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Link  string   `json:"link"`
}

// ParseTags splits a comma separated tag column. Empty entries are kept so
// that the tag count matches the stored column.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, len(parts))
	for i, p := range parts {
		tags[i] = strings.TrimSpace(p)
	}
	return tags
}

// JoinTags is the inverse of ParseTags for storage.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// VectorMatch is one neighbour returned by the similarity index.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]interface{}
}
