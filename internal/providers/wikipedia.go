package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/model"
)

const DefaultWikipediaURL = "https://vi.wikipedia.org/api/rest_v1/page/summary"

// Wikipedia fetches page summaries from the Vietnamese Wikipedia REST API.
type Wikipedia struct {
	baseURL string
	fetcher *Fetcher
}

// NewWikipedia creates a Wikipedia client.
func NewWikipedia(baseURL string, fetcher *Fetcher) *Wikipedia {
	if baseURL == "" {
		baseURL = DefaultWikipediaURL
	}
	return &Wikipedia{baseURL: strings.TrimRight(baseURL, "/"), fetcher: fetcher}
}

type summaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// Summarize returns the summary of the page titled topic. Disambiguation
// pages and empty extracts count as not found.
func (w *Wikipedia) Summarize(ctx context.Context, topic string) (*model.EncyclopediaSummary, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.NewValidationError("topic", "topic cannot be empty")
	}

	title := strings.ReplaceAll(topic, " ", "_")
	var resp summaryResponse
	if err := w.fetcher.GetJSON(ctx, w.baseURL+"/"+url.PathEscape(title), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Type == "disambiguation" || strings.TrimSpace(resp.Extract) == "" {
		return nil, fmt.Errorf("wikipedia summary for %q: %w", topic, errors.ErrNotFound)
	}

	summary := &model.EncyclopediaSummary{
		Title:   resp.Title,
		Summary: truncateText(resp.Extract, descriptionLimit*2),
		URL:     resp.ContentURLs.Desktop.Page,
	}
	if resp.Thumbnail != nil {
		summary.Image = resp.Thumbnail.Source
	}
	return summary, nil
}
