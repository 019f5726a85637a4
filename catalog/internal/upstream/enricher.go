package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mercadito/catalog/catalog/internal/otel"
	"github.com/mercadito/catalog/catalog/pkg/response"
	"github.com/mercadito/catalog/internal/log"
	"github.com/mercadito/catalog/internal/pacer"
)

// Enricher attaches price and inventory data to raw products, one upstream
// call per product. The loop is strictly sequential and paced: the upstream
// rate-limits per-product price reads, so concurrency is deliberately avoided
// here. Total latency is O(n × spacing), acceptable only because enriched
// snapshots are cached.
type Enricher struct {
	client       *Client
	pacer        *pacer.Pacer
	priceInCents bool
}

func NewEnricher(client *Client, p *pacer.Pacer, priceInCents bool) *Enricher {
	return &Enricher{client: client, pacer: p, priceInCents: priceInCents}
}

// Enrich maps every raw product to a catalog product. A per-item price fetch
// failure degrades that product to zero values and never aborts the rest;
// cancellation mid-sequence yields whatever was enriched so far.
func (e *Enricher) Enrich(c context.Context, raws []RawProduct) []response.Product {
	c, span := otel.Tracer.Start(c, "Enricher Enrich")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Enricher Enrich").
		Int(log.KeyProductCount, len(raws)).
		Logger()

	products := make([]response.Product, 0, len(raws))
	for _, raw := range raws {
		lg := logger.With().Str(log.KeyProductID, raw.ID).Logger()

		if err := e.pacer.Wait(c); err != nil {
			lg.Warn().
				Err(err).
				Int(log.KeyProductCount, len(products)).
				Msg("enrichment cancelled mid-sequence, returning partial result")
			return products
		}

		products = append(products, e.enrichOne(c, lg, raw))
	}

	logger.Info().Msg("enriched product list")
	return products
}

func (e *Enricher) enrichOne(
	c context.Context,
	logger zerolog.Logger,
	raw RawProduct,
) response.Product {
	prices, err := e.client.ListPrices(c, raw.ID)
	if err != nil {
		err = fmt.Errorf("failed fetching prices for product id=%s with error=%w", raw.ID, err)
		logger.Warn().Err(err).Msg("degrading product to zero-valued price")
		return MapProduct(raw, nil, e.priceInCents)
	}
	if len(prices) == 0 {
		return MapProduct(raw, nil, e.priceInCents)
	}

	first := RawPrice{}
	if err := json.Unmarshal(prices[0], &first); err != nil {
		err = fmt.Errorf("failed decoding price record for product id=%s with error=%w", raw.ID, err)
		logger.Warn().Err(err).Msg("degrading product to zero-valued price")
		return MapProduct(raw, nil, e.priceInCents)
	}
	return MapProduct(raw, &first, e.priceInCents)
}
