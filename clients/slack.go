package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"slack-file-cleaner/models"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Slack Web API root
const DefaultBaseURL = "https://slack.com/api"

// PageSize is the number of files requested per listing page
const PageSize = 100

var (
	// ErrAuth is returned when Slack rejects the token
	ErrAuth = errors.New("authentication failed")
	// ErrTransport is returned on network failures and non-success statuses
	ErrTransport = errors.New("transport error")
	// ErrAPI is returned when Slack reports any other error
	ErrAPI = errors.New("slack api error")
)

var authErrors = map[string]bool{
	"not_authed":       true,
	"invalid_auth":     true,
	"account_inactive": true,
	"token_revoked":    true,
	"token_expired":    true,
}

// SlackClient client for working with the Slack files API
type SlackClient struct {
	Token  string
	client *resty.Client
}

// SlackResponse fields shared by every Web API response
type SlackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SlackFilesList structure for files.list response
type SlackFilesList struct {
	SlackResponse
	Files  []models.FileRecord `json:"files"`
	Paging models.PageCursor   `json:"paging"`
}

// NewSlackClient creates a new Slack client with token
func NewSlackClient(baseURL, token string) *SlackClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetAuthToken(token)
	client.SetHeader("Accept", "application/json")

	return &SlackClient{
		Token:  token,
		client: client,
	}
}

// Authenticate checks token validity
func (sc *SlackClient) Authenticate(ctx context.Context) error {
	resp, err := sc.client.R().
		SetContext(ctx).
		Post("/auth.test")

	var out SlackResponse
	if err := decode(resp, err, &out); err != nil {
		return err
	}
	return out.err()
}

// ListFiles gets one page of the workspace file listing. tsTo limits the
// listing to files created before that epoch second; nil means no limit.
func (sc *SlackClient) ListFiles(ctx context.Context, page int, tsTo *int64) (models.FilesPage, error) {
	form := map[string]string{
		"token": sc.Token,
		"count": strconv.Itoa(PageSize),
		"page":  strconv.Itoa(page),
	}
	if tsTo != nil {
		form["ts_to"] = strconv.FormatInt(*tsTo, 10)
	}

	resp, err := sc.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post("/files.list")

	var out SlackFilesList
	if err := decode(resp, err, &out); err != nil {
		return models.FilesPage{}, fmt.Errorf("failed to list files: %w", err)
	}
	if err := out.err(); err != nil {
		return models.FilesPage{}, fmt.Errorf("failed to list files: %w", err)
	}

	return models.FilesPage{
		Files:  out.Files,
		Cursor: out.Paging,
	}, nil
}

// DeleteFile deletes file by id
func (sc *SlackClient) DeleteFile(ctx context.Context, fileID string) error {
	resp, err := sc.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"token": sc.Token,
			"file":  fileID,
		}).
		Post("/files.delete")

	var out SlackResponse
	if err := decode(resp, err, &out); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}
	if err := out.err(); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}

	return nil
}

func (r SlackResponse) err() error {
	if r.Error == "" {
		return nil
	}
	if authErrors[r.Error] {
		return fmt.Errorf("%w: %s", ErrAuth, r.Error)
	}
	return fmt.Errorf("%w: %s", ErrAPI, r.Error)
}

func decode(resp *resty.Response, err error, out any) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuth, code)
	case code < 200 || code > 299:
		return fmt.Errorf("%w: status %d", ErrTransport, code)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", ErrTransport, err)
	}
	return nil
}
