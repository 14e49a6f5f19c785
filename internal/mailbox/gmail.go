package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/btraven00/phishq/internal/extractor"
)

const gmailUser = "me"

// GmailConfig locates the OAuth2 client credentials and the stored token.
type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
}

// GmailSource reads messages through the Gmail API with read-only scope.
type GmailSource struct {
	service *gmail.Service
	now     func() time.Time
}

// NewGmailSource authenticates with the stored token. It returns
// ErrNotAuthenticated when the credentials or the token are missing.
func NewGmailSource(ctx context.Context, cfg GmailConfig) (*GmailSource, error) {
	oauthConfig, err := LoadOAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	return NewGmailSourceWithOptions(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
}

// NewGmailSourceWithOptions builds the Gmail client from explicit API options.
func NewGmailSourceWithOptions(ctx context.Context, opts ...option.ClientOption) (*GmailSource, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &GmailSource{service: service, now: time.Now}, nil
}

// Name implements Source.
func (s *GmailSource) Name() string {
	return "gmail"
}

// RecentMessageIDs implements Source.
func (s *GmailSource) RecentMessageIDs(ctx context.Context, days, max int) ([]string, error) {
	call := s.service.Users.Messages.List(gmailUser).
		Q(afterQuery(s.now(), days)).
		Context(ctx)

	if max > 0 {
		call = call.MaxResults(int64(max))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list gmail messages: %w", classifyAPIError(err))
	}

	ids := make([]string, 0, len(resp.Messages))

	for _, m := range resp.Messages {
		if max > 0 && len(ids) >= max {
			break
		}

		ids = append(ids, m.Id)
	}

	return ids, nil
}

// Message implements Source.
func (s *GmailSource) Message(ctx context.Context, id string) (*Message, error) {
	msg, err := s.service.Users.Messages.Get(gmailUser, id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get gmail message %s: %w", id, classifyAPIError(err))
	}

	result := &Message{ID: id}

	if msg.Payload != nil {
		result.Subject = headerValue(msg.Payload.Headers, "Subject")
		result.Body = partText(msg.Payload)
	}

	return result, nil
}

// afterQuery builds the Gmail search query for messages newer than days.
func afterQuery(now time.Time, days int) string {
	return "after:" + now.AddDate(0, 0, -days).Format("2006/01/02")
}

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}

	return ""
}

// partText walks the MIME tree and concatenates text/plain parts and the text
// of text/html parts. Undecodable parts are skipped.
func partText(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if len(part.Parts) > 0 {
		var b strings.Builder

		for _, child := range part.Parts {
			b.WriteString(partText(child))
		}

		return b.String()
	}

	if part.Body == nil || part.Body.Data == "" {
		return ""
	}

	data, err := decodeBody(part.Body.Data)
	if err != nil {
		return ""
	}

	switch strings.ToLower(part.MimeType) {
	case "text/plain":
		return data + "\n"
	case "text/html":
		return extractor.TextFromHTML(data) + "\n"
	default:
		return ""
	}
}

// decodeBody decodes Gmail's URL-safe base64, padded or not.
func decodeBody(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", err
		}
	}

	return strings.ToValidUTF8(string(decoded), ""), nil
}

func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrMessageNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}
	}

	return err
}

// LoadOAuthConfig reads an OAuth2 client credentials file downloaded from the
// Google Cloud console.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: credentials file %s not found", ErrNotAuthenticated, credentialsFile)
		}

		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", credentialsFile, err)
	}

	return config, nil
}

// LoadToken reads a token stored by SaveToken.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: token file %s not found, run 'phishq mail login'", ErrNotAuthenticated, tokenFile)
		}

		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", tokenFile, err)
	}

	return token, nil
}

// SaveToken writes token to tokenFile, readable only by the owner.
func SaveToken(tokenFile string, token *oauth2.Token) error {
	f, err := os.OpenFile(tokenFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(token); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// LoginURL returns the consent page URL for the authorization code flow.
func LoginURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and stores it.
func Exchange(ctx context.Context, config *oauth2.Config, code, tokenFile string) (*oauth2.Token, error) {
	token, err := config.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := SaveToken(tokenFile, token); err != nil {
		return nil, err
	}

	return token, nil
}
