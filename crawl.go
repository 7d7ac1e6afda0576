package insider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Entity is one tracked company: the display name (expected to match the
// issuer trading symbol in its filings) and the registry ID used to build
// its filing-folder URL.
type Entity struct {
	Name string `yaml:"name"`
	CIK  string `yaml:"cik"`
}

// Crawler walks the filings archive for every registered entity and
// accumulates the qualifying transactions of each Form 4 it finds.
//
// Entities are processed sequentially in registry order; filing folders
// within an entity are processed by a bounded worker group. Each filing is
// an independent unit of work: its failure is logged and skipped without
// touching siblings.
type Crawler struct {
	fetcher   *Fetcher
	baseURL   string
	extendURL string
	workers   int
	log       zerolog.Logger
}

// NewCrawler wires a Crawler from its collaborators. workers < 1 falls back
// to fully sequential processing.
func NewCrawler(fetcher *Fetcher, baseURL, extendURL string, workers int, log zerolog.Logger) *Crawler {
	if workers < 1 {
		workers = 1
	}
	return &Crawler{
		fetcher:   fetcher,
		baseURL:   baseURL,
		extendURL: extendURL,
		workers:   workers,
		log:       log,
	}
}

// Crawl drives the full run. On cancellation the records accumulated so far
// are returned together with the context error rather than discarded. Only
// context errors terminate the run early; everything else is scoped to the
// entity or filing that caused it.
func (c *Crawler) Crawl(ctx context.Context, registry []Entity) (*ResultTable, error) {
	table := NewResultTable()

	for _, entity := range registry {
		if err := ctx.Err(); err != nil {
			return table, err
		}

		c.log.Info().Str("entity", entity.Name).Str("cik", entity.CIK).Msg("crawling entity")

		if err := c.crawlEntity(ctx, entity, table); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return table, err
			}
			c.log.Error().Err(err).Str("entity", entity.Name).Msg("entity skipped")
		}
	}

	c.log.Info().Int("records", table.Len()).Msg("crawl finished")
	return table, nil
}

func (c *Crawler) crawlEntity(ctx context.Context, entity Entity, table *ResultTable) error {
	page, err := c.fetcher.Get(ctx, c.baseURL+c.extendURL+entity.CIK)
	if err != nil {
		return fmt.Errorf("failed to list filing folders: %w", err)
	}
	folders, err := ParseLinks(page)
	if err != nil {
		return fmt.Errorf("failed to parse filing folder list: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, folder := range folders {
		g.Go(func() error {
			batch, err := c.crawlFiling(gctx, entity, folder)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				var malformed *MalformedRowError
				if errors.As(err, &malformed) {
					c.log.Error().Err(err).
						Str("entity", entity.Name).
						Str("folder", folder).
						Msg("index table violates expected layout")
				} else {
					c.log.Warn().Err(err).
						Str("entity", entity.Name).
						Str("folder", folder).
						Msg("filing skipped")
				}
				return nil
			}
			table.Append(batch...)
			return nil
		})
	}

	return g.Wait()
}

// crawlFiling processes one filing folder end to end: list its files, find
// the index page, find the Form 4 XML, extract. Absence at any step (no
// index page, no Form 4 row, no transaction tables) is a benign zero-result
// outcome, not an error.
func (c *Crawler) crawlFiling(ctx context.Context, entity Entity, folder string) ([]TransactionRecord, error) {
	page, err := c.fetcher.Get(ctx, c.baseURL+folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list filing files: %w", err)
	}
	files, err := ParseLinks(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filing file list: %w", err)
	}

	indexLink, ok := FindIndexLink(files)
	if !ok {
		return nil, nil
	}

	indexPage, err := c.fetcher.Get(ctx, c.baseURL+indexLink)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index page: %w", err)
	}

	xmlLink, err := FindForm4XMLLink(indexPage)
	if err != nil {
		return nil, err
	}
	if xmlLink == "" {
		return nil, nil
	}

	xmlData, err := c.fetcher.Get(ctx, c.baseURL+xmlLink)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ownership document: %w", err)
	}
	doc, err := ParseOwnership(xmlData)
	if err != nil {
		return nil, err
	}

	return ExtractAll(doc, entity.Name), nil
}
