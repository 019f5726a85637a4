package upstream

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mercadito/catalog/catalog/internal/otel"
	"github.com/mercadito/catalog/internal/log"
	inOtel "github.com/mercadito/catalog/internal/otel"
)

const defaultPageSize = 100

// Fetcher walks the upstream's paginated product list until it has the whole
// catalog. The reported total is treated as a hint, not ground truth: the loop
// also terminates on the first empty page, which defends against both under-
// and over-reporting.
type Fetcher struct {
	client   *Client
	pageSize int
}

func NewFetcher(client *Client, pageSize int) *Fetcher {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Fetcher{client: client, pageSize: pageSize}
}

// FetchAll retrieves every raw product record. A failure on the very first
// call is fatal; a failure after at least one page was accumulated yields the
// partial result instead, since a partial catalog beats none.
func (f *Fetcher) FetchAll(c context.Context) ([]RawProduct, error) {
	c, span := otel.Tracer.Start(c, "Fetcher FetchAll")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Fetcher FetchAll").
		Logger()

	all := []RawProduct{}
	offset := 0
	total := 0
	for {
		lg := logger.With().Int(log.KeyOffset, offset).Logger()
		lg.Trace().Msg("fetching product page")
		span.AddEvent(fmt.Sprintf("fetching product page offset=%d", offset))
		page, reported, err := f.client.ListProducts(c, f.pageSize, offset)
		if err != nil {
			err = fmt.Errorf("failed fetching products at offset=%d with error=%w", offset, err)
			if len(all) == 0 {
				inOtel.RecordError(err, span)
				lg.Error().Err(err).Msg(err.Error())
				return nil, err
			}
			lg.Warn().
				Err(err).
				Int(log.KeyProductCount, len(all)).
				Msg("product page fetch failed mid-sequence, returning partial catalog")
			return all, nil
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if reported > 0 {
			total = reported
		}
		lg.Trace().
			Int(log.KeyTotal, total).
			Int(log.KeyProductCount, len(all)).
			Msg("fetched product page")

		offset += f.pageSize
		if total > 0 && offset >= total {
			break
		}
		// Total absent or reported as zero while records keep arriving: the
		// count fetched so far is only a lower bound, keep going until an
		// empty page.
	}

	logger.Info().Int(log.KeyProductCount, len(all)).Msg("fetched full product list")
	return all, nil
}
