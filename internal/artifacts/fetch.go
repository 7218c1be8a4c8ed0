package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lox/raincheck/internal/httputil"
)

// Download limits. maxPageSize applies to HTML answers, which are only read
// to look for a download confirmation form.
const (
	maxArtifactSize = 512 << 20
	maxPageSize     = 1 << 20
)

var (
	// ErrHTMLResponse means the store answered with a web page instead of the
	// file and the page held no download confirmation to follow, which is what
	// Google Drive does for private files.
	ErrHTMLResponse = errors.New("store returned an HTML page instead of the artifact")
	// ErrInvalidID is returned for identifiers that are unsafe to splice into a URL.
	ErrInvalidID = errors.New("invalid artifact id")

	validID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Fetcher downloads an artifact by identifier.
type Fetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// NewFetcher picks a Fetcher for the scheme of the URL template.
func NewFetcher(template string, timeout time.Duration, retries uint64, logger *zap.Logger) (Fetcher, error) {
	u, err := url.Parse(fmt.Sprintf(template, "id"))
	if err != nil {
		return nil, fmt.Errorf("parse artifact url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return NewHTTPFetcher(template, httputil.NewClient(timeout), retries, logger), nil
	case "ftp":
		return NewFTPFetcher(template, timeout, retries, logger), nil
	default:
		return nil, fmt.Errorf("unsupported artifact url scheme %q", u.Scheme)
	}
}

func resolve(template, id string) (string, error) {
	if !validID.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return fmt.Sprintf(template, id), nil
}

// HTTPFetcher downloads artifacts over HTTP(S), retrying rate limits and
// server errors with exponential backoff.
type HTTPFetcher struct {
	template   string
	client     *http.Client
	retries    uint64
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

func NewHTTPFetcher(template string, client *http.Client, retries uint64, logger *zap.Logger) *HTTPFetcher {
	// Drive ties the confirmation token to a session cookie.
	c := *client
	if c.Jar == nil {
		c.Jar, _ = cookiejar.New(nil)
	}
	return &HTTPFetcher{
		template: template,
		client:   &c,
		retries:  retries,
		logger:   logger,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 2 * time.Minute
			return bo
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, id string) ([]byte, error) {
	target, err := resolve(f.template, id)
	if err != nil {
		return nil, err
	}

	var body []byte
	operation := func() error {
		res, err := f.get(ctx, target, id)
		if err != nil {
			return err
		}
		if res.html {
			next, ok := driveConfirmURL(res.url, res.body)
			if !ok {
				return backoff.Permanent(fmt.Errorf("fetch %s: %w", id, ErrHTMLResponse))
			}
			f.logger.Info("confirming large file download", zap.String("id", id))
			if res, err = f.get(ctx, next, id); err != nil {
				return err
			}
			if res.html {
				return backoff.Permanent(fmt.Errorf("fetch %s after confirmation: %w", id, ErrHTMLResponse))
			}
		}
		body = res.body
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Warn("artifact fetch failed, retrying", zap.String("id", id), zap.Error(err), zap.Duration("wait", wait))
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(f.newBackOff(), f.retries), ctx)
	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		return nil, err
	}
	return body, nil
}

type fetchResult struct {
	body []byte
	html bool
	url  *url.URL
}

// get performs one request. Rate limits and server errors come back as
// retryable errors, everything else as permanent ones.
func (f *HTTPFetcher) get(ctx context.Context, target, id string) (fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fetchResult{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fetchResult{}, backoff.Permanent(fmt.Errorf("fetch %s: %w", id, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fetchResult{}, fmt.Errorf("fetch %s: status %d", id, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fetchResult{}, backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", id, resp.StatusCode, string(b)))
	}

	res := fetchResult{url: resp.Request.URL}
	limit := int64(maxArtifactSize)
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "text/html" {
		res.html = true
		limit = maxPageSize
	}
	res.body, err = io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return fetchResult{}, backoff.Permanent(fmt.Errorf("read body: %w", err))
	}
	if int64(len(res.body)) > limit {
		if res.html {
			return fetchResult{}, backoff.Permanent(fmt.Errorf("fetch %s: %w", id, ErrHTMLResponse))
		}
		return fetchResult{}, backoff.Permanent(fmt.Errorf("fetch %s: artifact larger than %d bytes", id, maxArtifactSize))
	}
	return res, nil
}
