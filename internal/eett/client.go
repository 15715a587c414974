package eett

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"

	"eettscrape/internal/metrics"
)

const (
	defaultBaseURL = "https://keraies.eett.gr/"
	searchPagePath = "anazhthsh.php"
	dataPagePath   = "getData.php"
)

// defaultHeaders mimic a desktop browser; the registry serves a different
// (and table-less) page to clients it does not recognize.
var defaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "el-GR,el;q=0.9,en;q=0.8",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// session owns the cookie-carrying HTTP state shared by all requests of one
// scrape. It is explicitly constructed and passed around, never global, so
// the scraper composes into other orchestration without ambient state.
type session struct {
	hc        *http.Client
	searchURL string
	dataURL   string
	job       string // metrics tag for this scrape
}

// newSession builds a session rooted at baseURL (the production registry when
// empty). The transport settings follow the project's crawler defaults.
func newSession(baseURL string, timeout time.Duration, job string) (*session, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := &http.Client{
		Timeout: timeout,
		Jar:     jar,
		Transport: &http.Transport{
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConns:        8,
			MaxIdleConnsPerHost: 4,
		},
	}

	return &session{
		hc:        hc,
		searchURL: base.JoinPath(searchPagePath).String(),
		dataURL:   base.JoinPath(dataPagePath).String(),
		job:       job,
	}, nil
}

// fetchSearchPage GETs the search form page and returns the parsed document.
func (s *session) fetchSearchPage(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search page request: %w", err)
	}
	body, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	return doc, nil
}

// fetchResultsPage POSTs one page request to the results endpoint and returns
// the parsed document plus the decoded raw body (for the debug sink).
func (s *session) fetchResultsPage(ctx context.Context, payload url.Values) (*goquery.Document, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.dataURL,
		strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, nil, fmt.Errorf("build results request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := s.do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch results page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse results page: %w", err)
	}
	return doc, body, nil
}

// do executes one request with the session's default headers and returns the
// response body decoded to UTF-8. Non-2xx statuses are errors.
//
// The registry has historically served legacy Greek encodings; decoding goes
// through the charset sniffer rather than assuming UTF-8.
func (s *session) do(req *http.Request) ([]byte, error) {
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	// The results endpoint rejects requests that do not originate from the
	// search page.
	req.Header.Set("Referer", s.searchURL)

	start := time.Now()
	resp, err := s.hc.Do(req)
	if err != nil {
		metrics.RecordHTTP(s.job, 0, err, time.Since(start), 0)
		return nil, err
	}
	defer resp.Body.Close()

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		metrics.RecordHTTP(s.job, resp.StatusCode, err, time.Since(start), 0)
		return nil, fmt.Errorf("decode response: %w", err)
	}
	body, err := io.ReadAll(reader)
	dur := time.Since(start)
	if err != nil {
		metrics.RecordHTTP(s.job, resp.StatusCode, err, dur, int64(len(body)))
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("%s: unexpected status %d", req.URL.Path, resp.StatusCode)
		metrics.RecordHTTP(s.job, resp.StatusCode, err, dur, int64(len(body)))
		return nil, err
	}

	metrics.RecordHTTP(s.job, resp.StatusCode, nil, dur, int64(len(body)))
	return body, nil
}
