package scrape

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const (
	GradeDistUrl = "https://as.ucsd.edu/gradeDistribution/index/GradeDistribution_page/"
	CapeUrl      = "http://cape.ucsd.edu/responses/Results.aspx?Name=&CourseNumber="

	// The CAPE server answers 404 to anything that doesn't look like a browser
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/48.0.2564.109 Safari/537.36"

	DefaultLimit   = 10
	RequestTimeout = 60 * time.Second
)

// Sources holds the base endpoints that page numbers and course codes are
// substituted into.
type Sources struct {
	GradeDist string
	Cape      string
}

func DefaultSources() Sources {
	return Sources{GradeDist: GradeDistUrl, Cape: CapeUrl}
}

func (s Sources) GradeDistPage(page int) string {
	return s.GradeDist + strconv.Itoa(page)
}

func (s Sources) CapePage(code CourseCode) string {
	return s.Cape + url.QueryEscape(code.Subject) + "+" + url.QueryEscape(code.Course)
}

type FetcherOptions struct {
	// CacheDir enables colly's on-disk response cache when non-empty
	CacheDir  string
	UserAgent string
	// Parallelism caps concurrent requests at the transport
	Parallelism int
	Timeout     time.Duration
}

// Fetcher retrieves one page per call. It is safe for concurrent use.
type Fetcher struct {
	c        *colly.Collector
	cacheDir string
}

func NewFetcher(opts FetcherOptions) (*Fetcher, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = DefaultLimit
	}
	if opts.Timeout == 0 {
		opts.Timeout = RequestTimeout
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.CacheDir = opts.CacheDir
	c.SetRequestTimeout(opts.Timeout)
	err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: opts.Parallelism})
	if err != nil {
		return nil, fmt.Errorf("failed to set limit rule: %w", err)
	}
	return &Fetcher{c: c, cacheDir: opts.CacheDir}, nil
}

// Fetch issues a single GET and parses the body. Transport errors and
// non-success statuses come back as a *FetchError, and the page is dropped
// from the cache so the next run asks the server again.
//
// colly v2.1.0 has no per-request context, so a request already on the wire
// when ctx is cancelled is abandoned rather than interrupted. Fetch returns
// ctx.Err() right away and the request ends on its own within the timeout.
func (f *Fetcher) Fetch(ctx context.Context, pageUrl string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc *goquery.Document
	var parseErr error
	status := 0

	c := f.c.Clone() // same collector but without old callbacks
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnResponse(func(res *colly.Response) {
		status = res.StatusCode
		doc, parseErr = goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body))
	})
	c.OnError(func(res *colly.Response, _ error) {
		if res != nil {
			status = res.StatusCode
		}
	})

	start := time.Now()
	visited := make(chan error, 1)
	go func() {
		visited <- c.Visit(pageUrl)
	}()

	var err error
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err = <-visited:
	}
	if err == nil && ctx.Err() != nil {
		// Aborted in OnRequest
		return nil, ctx.Err()
	}
	switch {
	case err != nil:
		err = &FetchError{URL: pageUrl, StatusCode: status, Err: err}
	case parseErr != nil:
		err = &FetchError{URL: pageUrl, StatusCode: status, Err: parseErr}
	case doc == nil:
		err = &FetchError{URL: pageUrl, StatusCode: status, Err: fmt.Errorf("empty response")}
	}
	if err != nil {
		f.evict(pageUrl)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"url":     pageUrl,
		"status":  status,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("Fetched page")
	return doc, nil
}

// evict removes a page from colly's disk cache. colly keeps every response
// below 500 forever, failures included.
func (f *Fetcher) evict(pageUrl string) {
	if f.cacheDir == "" {
		return
	}
	file := CachePath(f.cacheDir, pageUrl)
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("url", pageUrl).Warn("Unable to evict cached page")
		return
	}
	logrus.WithField("url", pageUrl).Debug("Evicted cached page")
}

// CachePath is where colly's disk cache stores pageUrl: the hex sha1 of the
// parsed URL, fanned out by its first two characters.
func CachePath(cacheDir, pageUrl string) string {
	if u, err := url.Parse(pageUrl); err == nil {
		pageUrl = u.String()
	}
	sum := sha1.Sum([]byte(pageUrl))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(cacheDir, hash[:2], hash)
}

// Client pairs a Fetcher with the endpoints it should hit.
type Client struct {
	Fetcher *Fetcher
	Sources Sources
}

func NewClient(f *Fetcher, sources Sources) *Client {
	return &Client{Fetcher: f, Sources: sources}
}
