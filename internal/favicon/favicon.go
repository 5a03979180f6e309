// Package favicon discovers a site's icons. It scrapes <link> tags from the
// page, adds the usual well-known paths and downloads every candidate that
// turns out to be an image.
package favicon

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/MrSnakeDoc/startpage/internal/domain"
	"github.com/MrSnakeDoc/startpage/internal/logger"
	"github.com/MrSnakeDoc/startpage/internal/media"
	"github.com/MrSnakeDoc/startpage/internal/utils"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxIconBytes = 2 << 20
	maxPageBytes = 4 << 20
)

// linkSelectors lists the <link> rels browsers use for site icons.
var linkSelectors = []string{
	`link[rel="icon"]`,
	`link[rel="shortcut icon"]`,
	`link[rel="apple-touch-icon"]`,
	`link[rel="apple-touch-icon-precomposed"]`,
	`link[rel="mask-icon"]`,
}

var commonPaths = []string{
	"/favicon.ico",
	"/favicon.png",
	"/favicon.svg",
	"/apple-touch-icon.png",
	"/apple-touch-icon-precomposed.png",
	"/favicon-32x32.png",
	"/favicon-16x16.png",
}

// Icon is one downloaded candidate.
type Icon struct {
	URL         string `json:"url"`
	Data        string `json:"data"` // base64, standard encoding
	ContentType string `json:"content_type"`
}

// Result is the lookup answer. Icons is never nil.
type Result struct {
	Icons []Icon `json:"icons"`
}

// Cache stores encoded results by page URL. Misses return ok=false.
type Cache interface {
	GetFavicon(ctx context.Context, pageURL string) ([]byte, bool, error)
	SaveFavicon(ctx context.Context, pageURL string, payload []byte, ttl time.Duration) error
}

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Cache     Cache         // optional
	CacheTTL  time.Duration // used with Cache
	Logger    logger.Logger
}

// Fetcher runs favicon lookups. It is safe for concurrent use.
type Fetcher struct {
	client   *resty.Client
	cache    Cache
	cacheTTL time.Duration
	log      logger.Logger
}

func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Fetcher{
		client:   client,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		log:      opts.Logger,
	}
}

// Fetch returns every icon found for pageURL. Unreachable pages and broken
// candidates are skipped, so the result may be empty. Only a URL that is not
// absolute http(s) is an error.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Result, error) {
	page, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (page.Scheme != "http" && page.Scheme != "https") || page.Host == "" {
		return Result{}, fmt.Errorf("invalid url %q: %w", pageURL, domain.ErrBadRequest)
	}

	if res, ok := f.fromCache(ctx, page.String()); ok {
		return res, nil
	}

	candidates := f.candidates(ctx, page)
	res := Result{Icons: make([]Icon, 0, len(candidates))}
	for _, c := range candidates {
		if icon, ok := f.download(ctx, c); ok {
			res.Icons = append(res.Icons, icon)
		}
	}

	f.log.Debug("favicon lookup",
		logger.String("url", page.String()),
		logger.Int("candidates", len(candidates)),
		logger.Int("icons", len(res.Icons)))

	f.toCache(ctx, page.String(), res)
	return res, nil
}

// candidates lists icon URLs in discovery order without duplicates: <link>
// tags first, then the common paths at the site root.
func (f *Fetcher) candidates(ctx context.Context, page *url.URL) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}

	for _, href := range f.scrapeLinks(ctx, page) {
		add(resolve(page, href))
	}

	root := &url.URL{Scheme: page.Scheme, Host: page.Host}
	for _, p := range commonPaths {
		add(root.String() + p)
	}
	return out
}

func (f *Fetcher) scrapeLinks(ctx context.Context, page *url.URL) []string {
	resp, err := f.get(ctx, page.String())
	if err != nil {
		f.log.Debug("favicon page fetch failed", logger.String("url", page.String()), logger.Error(err))
		return nil
	}
	defer closeBody(resp)
	if resp.IsError() {
		return nil
	}

	// Oversized pages are cut at the limit; the head comes first anyway.
	body, _ := readLimited(resp, maxPageBytes)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var hrefs []string
	for _, sel := range linkSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
				hrefs = append(hrefs, strings.TrimSpace(href))
			}
		})
	}
	return hrefs
}

func (f *Fetcher) download(ctx context.Context, iconURL string) (Icon, bool) {
	resp, err := f.get(ctx, iconURL)
	if err != nil {
		return Icon{}, false
	}
	defer closeBody(resp)
	if !resp.IsSuccess() {
		return Icon{}, false
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = media.ICO.MIME
	}
	if !strings.HasPrefix(contentType, "image/") && !strings.Contains(contentType, "icon") {
		return Icon{}, false
	}

	body, complete := readLimited(resp, maxIconBytes)
	if !complete || len(body) == 0 || !media.IsImage(body) {
		return Icon{}, false
	}

	return Icon{
		URL:         iconURL,
		Data:        base64.StdEncoding.EncodeToString(body),
		ContentType: contentType,
	}, true
}

// get leaves the body unread so callers can bound how much of it they
// buffer. The caller closes it with closeBody.
func (f *Fetcher) get(ctx context.Context, target string) (*resty.Response, error) {
	return f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
}

func closeBody(resp *resty.Response) {
	if body := resp.RawBody(); body != nil {
		utils.Close(body)
	}
}

// readLimited reads at most limit bytes of the raw body. complete is false
// when the body was longer than limit or the read failed.
func readLimited(resp *resty.Response, limit int64) (data []byte, complete bool) {
	body := resp.RawBody()
	if body == nil {
		return nil, true
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return data, false
	}
	if int64(len(data)) > limit {
		return data[:limit], false
	}
	return data, true
}

func (f *Fetcher) fromCache(ctx context.Context, key string) (Result, bool) {
	if f.cache == nil {
		return Result{}, false
	}
	data, ok, err := f.cache.GetFavicon(ctx, key)
	if err != nil {
		f.log.Warn("favicon cache read failed", logger.Error(err))
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res.Icons == nil {
		return Result{}, false
	}
	return res, true
}

// toCache stores non-empty results only, so a site that was down gets
// another chance on the next request.
func (f *Fetcher) toCache(ctx context.Context, key string, res Result) {
	if f.cache == nil || len(res.Icons) == 0 {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := f.cache.SaveFavicon(ctx, key, data, f.cacheTTL); err != nil {
		f.log.Warn("favicon cache write failed", logger.Error(err))
	}
}

// resolve turns an href found on page into an absolute URL.
// Protocol-relative hrefs get https.
func resolve(page *url.URL, href string) string {
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return page.ResolveReference(ref).String()
}
