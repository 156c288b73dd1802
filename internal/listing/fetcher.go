package listing

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tuxboard/internal/plan"
)

// allFetchParallelism bounds concurrent per-document fetches in All.
const allFetchParallelism = 4

// Loaded is one successfully fetched and flattened plan document.
type Loaded struct {
	URL  string
	File string
	Doc  *plan.Document
	Rows []plan.Row
}

// Index returns the plan file URLs linked from the directory listing.
func (c *Client) Index(ctx context.Context) ([]string, error) {
	if v, ok := c.cache.get(c.baseURL); ok {
		return v.([]string), nil
	}
	page, err := c.get(ctx, c.baseURL, "fetch index")
	if err != nil {
		return nil, err
	}
	links, err := extractPlanLinks(page, c.baseURL)
	if err != nil {
		return nil, err
	}
	c.cache.put(c.baseURL, links)
	return links, nil
}

// Document fetches and parses one plan document by URL.
func (c *Client) Document(ctx context.Context, planURL string) (*plan.Document, error) {
	if v, ok := c.cache.get(planURL); ok {
		return v.(*plan.Document), nil
	}
	body, err := c.get(ctx, planURL, "fetch plan")
	if err != nil {
		return nil, err
	}
	doc, err := plan.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FileName(planURL), err)
	}
	c.cache.put(planURL, doc)
	return doc, nil
}

// Load fetches one plan document and flattens it.
func (c *Client) Load(ctx context.Context, planURL string) (*Loaded, error) {
	doc, err := c.Document(ctx, planURL)
	if err != nil {
		return nil, err
	}
	file := FileName(planURL)
	return &Loaded{
		URL:  planURL,
		File: file,
		Doc:  doc,
		Rows: plan.Flatten(doc, file),
	}, nil
}

// All fetches every plan in the index. Documents that fail to fetch or
// parse are logged and skipped; the error return covers only an index
// failure. Results keep index order regardless of fetch completion
// order.
func (c *Client) All(ctx context.Context) ([]*Loaded, error) {
	urls, err := c.Index(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*Loaded, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(allFetchParallelism)
	for i, u := range urls {
		g.Go(func() error {
			loaded, err := c.Load(gctx, u)
			if err != nil {
				c.logger.WarnContext(gctx, "skipping plan", "url", u, "error", err)
				return nil
			}
			results[i] = loaded
			return nil
		})
	}
	// Workers never return errors; Wait only observes ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := make([]*Loaded, 0, len(results))
	for _, l := range results {
		if l != nil {
			loaded = append(loaded, l)
		}
	}
	return loaded, nil
}
