// Package store contains entities and services to persist processed
// articles.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Interface defines methods for store
type Interface interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context, req ListRequest) ([]Entry, error)
	Search(ctx context.Context, query string) ([]Entry, error)
	FindByURL(ctx context.Context, u string) (Entry, error)
	Delete(ctx context.Context, id string) error
}

// ListRequest defines parameters for listing entries from store.
type ListRequest struct{}

// Entry is a processed article: the extracted Chinese text with its
// metadata, the English translation and the executive summary.
type Entry struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	SourceName  string    `json:"source_name"`
	Author      string    `json:"author"`
	PubDate     string    `json:"pub_date"`
	ChineseText string    `json:"chinese_text"`
	EnglishText string    `json:"english_text"`
	Summary     string    `json:"summary"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
