package mailbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"github.com/btraven00/phishq/internal/extractor"
)

// EMLSource reads .eml files from a directory. Message ids are file names
// and recency is taken from the file modification time.
type EMLSource struct {
	now func() time.Time
	dir string
}

// NewEMLSource creates a source over dir.
func NewEMLSource(dir string) *EMLSource {
	return &EMLSource{dir: dir, now: time.Now}
}

// Name implements Source.
func (s *EMLSource) Name() string {
	return "eml:" + s.dir
}

// RecentMessageIDs implements Source.
func (s *EMLSource) RecentMessageIDs(ctx context.Context, days, max int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mail directory %s: %w", s.dir, err)
	}

	type candidate struct {
		modTime time.Time
		name    string
	}

	cutoff := s.now().AddDate(0, 0, -days)

	var candidates []candidate

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".eml") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}

		if days > 0 && info.ModTime().Before(cutoff) {
			continue
		}

		candidates = append(candidates, candidate{name: entry.Name(), modTime: info.ModTime()})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].modTime.Equal(candidates[j].modTime) {
			return candidates[i].name < candidates[j].name
		}

		return candidates[i].modTime.After(candidates[j].modTime)
	})

	ids := make([]string, 0, len(candidates))

	for _, c := range candidates {
		if max > 0 && len(ids) >= max {
			break
		}

		ids = append(ids, c.name)
	}

	return ids, nil
}

// Message implements Source.
func (s *EMLSource) Message(ctx context.Context, id string) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id == "" || filepath.Base(id) != id {
		return nil, fmt.Errorf("%w: %q", ErrMessageNotFound, id)
	}

	f, err := os.Open(filepath.Join(s.dir, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
		}

		return nil, fmt.Errorf("failed to open message %s: %w", id, err)
	}
	defer f.Close()

	env, err := enmime.ReadEnvelope(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message %s: %w", id, err)
	}

	body := joinBody(env.Text, env.HTML)

	for _, att := range env.Attachments {
		if !extractor.IsDocumentType(att.ContentType) && !extractor.IsDocument(att.FileName) {
			continue
		}

		contentType := att.ContentType
		if !extractor.IsDocumentType(contentType) {
			contentType = extractor.DocumentType(att.FileName)
		}

		// unreadable attachments are skipped, the message body still counts
		if text, err := extractor.TextFromDocument(att.Content, contentType); err == nil {
			body += "\n" + text
		}
	}

	return &Message{
		ID:      id,
		Subject: env.GetHeader("Subject"),
		Body:    body,
	}, nil
}

// joinBody concatenates the plain-text body with the text of the HTML body.
func joinBody(text, htmlBody string) string {
	parts := make([]string, 0, 2)

	if strings.TrimSpace(text) != "" {
		parts = append(parts, text)
	}

	if strings.TrimSpace(htmlBody) != "" {
		parts = append(parts, extractor.TextFromHTML(htmlBody))
	}

	return strings.Join(parts, "\n")
}
