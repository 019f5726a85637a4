package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/mercadito/catalog/catalog/internal/cache"
	"github.com/mercadito/catalog/catalog/internal/otel"
	"github.com/mercadito/catalog/catalog/internal/upstream"
	"github.com/mercadito/catalog/catalog/pkg/response"
	inErrors "github.com/mercadito/catalog/internal/errors"
	"github.com/mercadito/catalog/internal/log"
	inOtel "github.com/mercadito/catalog/internal/otel"
)

// CatalogService reconciles the upstream's pagination and rate limits with a
// consistent, cacheable catalog view, and performs the in-place price and
// inventory mutations.
type CatalogService struct {
	client       *upstream.Client
	fetcher      *upstream.Fetcher
	enricher     *upstream.Enricher
	store        *cache.SnapshotStore
	group        singleflight.Group
	priceInCents bool
}

func NewCatalogService(
	client *upstream.Client,
	fetcher *upstream.Fetcher,
	enricher *upstream.Enricher,
	store *cache.SnapshotStore,
	priceInCents bool,
) *CatalogService {
	return &CatalogService{
		client:       client,
		fetcher:      fetcher,
		enricher:     enricher,
		store:        store,
		priceInCents: priceInCents,
	}
}

func (svc *CatalogService) GetProducts(
	c context.Context,
	q ProductQuery,
) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "CatalogService GetProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService GetProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading snapshot").Logger()
	logger.Trace().Msg("loading snapshot")
	span.AddEvent("loading snapshot")
	snapshot, ok := svc.store.Get(c)
	if !ok {
		logger.Info().Msg("snapshot miss, refetching catalog from upstream")
		span.AddEvent("snapshot miss, refetching catalog from upstream")
		fresh, err := svc.refreshSnapshot(c)
		if err != nil {
			err = fmt.Errorf("failed refreshing catalog snapshot with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.ProductPage{}, err
		}
		snapshot = fresh
	}
	logger = logger.With().Int(log.KeyProductCount, len(snapshot.Products)).Logger()
	logger.Info().Msg("loaded snapshot")

	logger = logger.With().Str(log.KeyProcess, "querying snapshot").Logger()
	logger.Trace().Msg("querying snapshot")
	span.AddEvent("querying snapshot")
	filtered := applyFilters(snapshot.Products, q)
	items, pagination := paginate(filtered, q.Page, q.Limit)
	summary := summarize(snapshot.Products)
	logger.Info().Msg("queried snapshot")

	return response.ProductPage{
		Products:   items,
		Pagination: pagination,
		Summary:    summary,
	}, nil
}

// refreshSnapshot runs the full fetch-and-enrich sequence. Concurrent misses
// collapse into one in-flight refetch; every waiter gets the same snapshot.
func (svc *CatalogService) refreshSnapshot(c context.Context) (cache.Snapshot, error) {
	result, err, _ := svc.group.Do(cache.KeySnapshot, func() (interface{}, error) {
		raws, err := svc.fetcher.FetchAll(c)
		if err != nil {
			return nil, fmt.Errorf("failed fetching product list with error=%w", err)
		}
		snapshot := cache.Snapshot{
			FetchedAt: time.Now().UTC(),
			Products:  svc.enricher.Enrich(c, raws),
		}
		svc.store.Set(c, snapshot)
		return snapshot, nil
	})
	if err != nil {
		return cache.Snapshot{}, err
	}
	return result.(cache.Snapshot), nil
}

func (svc *CatalogService) UpdatePrice(
	c context.Context,
	productID string,
	priceID string,
	price decimal.Decimal,
) (response.PriceUpdate, error) {
	c, span := otel.Tracer.Start(c, "CatalogService UpdatePrice")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService UpdatePrice").
		Str(log.KeyProductID, productID).
		Str(log.KeyPriceID, priceID).
		Str(log.KeyPrice, price.String()).
		Logger()

	if productID == "" || priceID == "" {
		err := fmt.Errorf("productId and priceId are required: %w", inErrors.ErrValidation)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PriceUpdate{}, err
	}
	if price.IsNegative() {
		err := fmt.Errorf("price must be a non-negative number: %w", inErrors.ErrValidation)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PriceUpdate{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating price upstream").Logger()
	logger.Info().Msg("updating price upstream")
	span.AddEvent("updating price upstream")
	body := map[string]interface{}{
		"amount":   upstream.ToWireAmount(price, svc.priceInCents),
		"currency": "MXN",
	}
	updated, err := svc.client.UpdatePrice(c, productID, priceID, body)
	if err != nil {
		err = fmt.Errorf("failed updating price upstream with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PriceUpdate{}, err
	}
	logger.Info().Msg("updated price upstream")

	logger = logger.With().Str(log.KeyProcess, "invalidating snapshot").Logger()
	logger.Info().Msg("invalidating snapshot so next read reflects the change")
	span.AddEvent("invalidating snapshot")
	svc.store.Invalidate(c)

	return response.PriceUpdate{
		Success: true,
		Price:   upstream.FromWireAmount(updated.Amount, svc.priceInCents),
		PriceID: updated.ID,
	}, nil
}

func (svc *CatalogService) UpdateInventory(
	c context.Context,
	productID string,
	quantity int,
) (response.InventoryUpdate, error) {
	c, span := otel.Tracer.Start(c, "CatalogService UpdateInventory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService UpdateInventory").
		Str(log.KeyProductID, productID).
		Int(log.KeyQuantity, quantity).
		Logger()

	if productID == "" || quantity < 0 {
		err := fmt.Errorf("productId and a non-negative quantity are required: %w", inErrors.ErrValidation)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryUpdate{}, err
	}

	// Inventory lives on the price record, so the current record is read
	// first and written back with the quantity replaced.
	logger = logger.With().Str(log.KeyProcess, "reading price records").Logger()
	logger.Info().Msg("reading price records")
	span.AddEvent("reading price records")
	prices, err := svc.client.ListPrices(c, productID)
	if err != nil {
		err = fmt.Errorf("failed reading price records with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryUpdate{}, err
	}
	if len(prices) == 0 {
		err = fmt.Errorf("no price records for product id=%s: %w", productID, inErrors.ErrNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryUpdate{}, err
	}
	logger.Info().Msg("read price records")

	record := map[string]interface{}{}
	if err := json.Unmarshal(prices[0], &record); err != nil {
		err = fmt.Errorf("failed decoding price record with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryUpdate{}, err
	}
	priceID, _ := record["_id"].(string)
	if priceID == "" {
		err = fmt.Errorf("price record for product id=%s has no id: %w", productID, inErrors.ErrNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryUpdate{}, err
	}
	record["availableQuantity"] = quantity
	record["trackInventory"] = true

	logger = logger.With().
		Str(log.KeyProcess, "updating inventory upstream").
		Str(log.KeyPriceID, priceID).
		Logger()
	logger.Info().Msg("updating inventory upstream")
	span.AddEvent("updating inventory upstream")
	if _, err := svc.client.UpdatePrice(c, productID, priceID, record); err != nil {
		err = fmt.Errorf("failed updating inventory upstream with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryUpdate{}, err
	}
	logger.Info().Msg("updated inventory upstream")

	logger = logger.With().Str(log.KeyProcess, "invalidating snapshot").Logger()
	logger.Info().Msg("invalidating snapshot so next read reflects the change")
	span.AddEvent("invalidating snapshot")
	svc.store.Invalidate(c)

	return response.InventoryUpdate{
		Success:   true,
		ProductID: productID,
		Quantity:  quantity,
	}, nil
}
