package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type JobFetcher interface {
	FetchJobPosting(ctx context.Context, rawURL string) (*model.JobPosting, error)
}

// JobFetchService reads pages through a CORS-proxy style service that answers
// {"contents": "<raw html>"} for GET <proxy>?url=<target>.
type JobFetchService struct {
	client   *resty.Client
	proxyURL string
	log      logging.Logger
}

func NewJobFetchService(cfg *config.FetchConfig, log logging.Logger) *JobFetchService {
	return &JobFetchService{
		client:   resty.New().SetTimeout(cfg.Timeout),
		proxyURL: cfg.ProxyURL,
		log:      log.With("component", "job_fetch"),
	}
}

// ParseJobURL accepts absolute http(s) URLs only.
func ParseJobURL(rawURL string) (*url.URL, error) {
	u, err := url.ParseRequestURI(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %w", common.ErrFetchFailed, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: url must be absolute http(s)", common.ErrFetchFailed)
	}
	return u, nil
}

func (s *JobFetchService) FetchJobPosting(ctx context.Context, rawURL string) (*model.JobPosting, error) {
	target, err := ParseJobURL(rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("url", target.String()).
		SetHeader("Accept", "application/json").
		Get(s.proxyURL)
	if err != nil {
		s.log.Warn(ctx, "proxy request failed", "url", target.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: proxy returned %d", common.ErrFetchFailed, resp.StatusCode())
	}

	contents := gjson.Get(resp.String(), "contents")
	if !contents.Exists() || strings.TrimSpace(contents.String()) == "" {
		return nil, fmt.Errorf("%w: empty contents", common.ErrFetchFailed)
	}

	rawHTML := contents.String()
	text, err := HTMLToText(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no text content found in webpage", common.ErrFetchFailed)
	}

	s.log.Info(ctx, "job posting fetched", "url", target.String(), "chars", len(text), "took", time.Since(start))
	return &model.JobPosting{
		SourceURL:   target.String(),
		RawHTML:     rawHTML,
		CleanedText: text,
	}, nil
}

// block-level elements get a separator so adjacent blocks do not run together
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Table: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Dd: true, atom.Dt: true,
}

// elements whose content is never shown as page text
var hiddenElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

// HTMLToText returns the visible body text of a document with whitespace
// collapsed. Script, style, noscript and template elements are dropped.
func HTMLToText(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return "", nil
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if hiddenElements[n.DataAtom] {
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	walk(body)
	return util.CollapseWhitespace(b.String()), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
