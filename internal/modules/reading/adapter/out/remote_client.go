package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	contentdto "bookplus/internal/modules/content/dto"
	profiledto "bookplus/internal/modules/profile/dto"
	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
	apperrors "bookplus/internal/platform/errors"
)

// RemoteClient talks to a running `bookplus serve` instance. It implements
// the content, pattern and baseline ports against the /api endpoints.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteClient(baseURL string, timeout time.Duration) (*RemoteClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("remote url is required: %w", apperrors.ErrInvalidInput)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: remote url: %v", apperrors.ErrInvalidInput, err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteClient{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}, nil
}

func (c *RemoteClient) ForBook(ctx context.Context, bookID string) (readingout.ContentSource, error) {
	source := &remoteBook{client: c, bookID: bookID}
	if _, err := source.UnitCount(ctx); err != nil {
		return nil, err
	}
	return source, nil
}

func (c *RemoteClient) PostReadingPattern(ctx context.Context, userKey string, pattern domain.ReadingPattern) error {
	body, err := json.Marshal(pattern)
	if err != nil {
		return fmt.Errorf("encode reading pattern: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/users/"+url.PathEscape(userKey)+"/reading-patterns", body, nil)
}

func (c *RemoteClient) LoadBaseline(ctx context.Context, userKey string) (domain.Baseline, error) {
	var out profiledto.BaselineOutput
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userKey)+"/baseline", nil, &out); err != nil {
		return domain.Baseline{}, err
	}
	return domain.Baseline{NormalWPM: out.NormalWPM, SkimWPM: out.SkimWPM}, nil
}

func (c *RemoteClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// statusError maps API error codes back onto the shared sentinels.
func statusError(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)
	detail := payload.Detail
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, detail)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, detail)
	default:
		return errors.New("remote status " + strconv.Itoa(resp.StatusCode) + ": " + detail)
	}
}

type remoteBook struct {
	client *RemoteClient
	bookID string
}

func (b *remoteBook) unitPath(index int) string {
	return "/api/books/" + url.PathEscape(b.bookID) + "/units/" + strconv.Itoa(index)
}

func (b *remoteBook) UnitCount(ctx context.Context) (int, error) {
	var out contentdto.UnitCountOutput
	if err := b.client.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(b.bookID)+"/units", nil, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

func (b *remoteBook) UnitText(ctx context.Context, index int) (string, error) {
	var out contentdto.UnitTextOutput
	if err := b.client.do(ctx, http.MethodGet, b.unitPath(index), nil, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (b *remoteBook) UnitAnalysis(ctx context.Context, index int) (domain.Analysis, error) {
	var out contentdto.AnalysisOutput
	if err := b.client.do(ctx, http.MethodGet, b.unitPath(index)+"/analysis", nil, &out); err != nil {
		return domain.Analysis{}, err
	}
	return toAnalysis(out), nil
}

func (b *remoteBook) AdaptiveVariant(ctx context.Context, index int, version domain.ContentVersion) (domain.AdaptiveContent, error) {
	var out contentdto.VariantOutput
	path := b.unitPath(index) + "/adaptive?version=" + url.QueryEscape(version.String())
	if err := b.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return domain.AdaptiveContent{}, err
	}
	return toAdaptive(out)
}
