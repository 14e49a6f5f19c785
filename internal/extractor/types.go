package extractor

import (
	"time"
)

// ExtractedLink represents a URL candidate found in text.
type ExtractedLink struct {
	URL      string `json:"url"`
	Raw      string `json:"raw"`
	Context  string `json:"context,omitempty"`
	Position int    `json:"position"`
}

// ExtractionResult contains the complete result of extracting URLs from one source.
type ExtractionResult struct {
	Source      string          `json:"source"`
	Links       []ExtractedLink `json:"links"`
	URLs        []string        `json:"urls"`
	Summary     ExtractionStats `json:"summary"`
	TotalText   int             `json:"total_text"`
	ProcessTime time.Duration   `json:"process_time"`
}

// ExtractionStats provides summary statistics for extracted links.
type ExtractionStats struct {
	TotalLinks  int `json:"total_links"`
	UniqueLinks int `json:"unique_links"`
}

// ExtractionOptions configures the link extraction process.
type ExtractionOptions struct {
	IncludeContext bool `json:"include_context"`
	ContextLength  int  `json:"context_length"`
}

// DefaultExtractionOptions returns default extraction options.
func DefaultExtractionOptions() ExtractionOptions {
	return ExtractionOptions{
		IncludeContext: false,
		ContextLength:  80,
	}
}

// Extract runs the extraction over text read from source (a file name,
// "stdin" or a message id) and summarizes the matches.
func (e *Extractor) Extract(source, text string) *ExtractionResult {
	start := time.Now()

	links := e.Links(text)
	urls := e.ExtractURLs(text)

	return &ExtractionResult{
		Source:    source,
		Links:     links,
		URLs:      urls,
		TotalText: len(text),
		Summary: ExtractionStats{
			TotalLinks:  len(links),
			UniqueLinks: len(urls),
		},
		ProcessTime: time.Since(start),
	}
}
