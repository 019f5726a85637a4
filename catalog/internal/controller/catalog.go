package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/mercadito/catalog/catalog/internal/otel"
	"github.com/mercadito/catalog/catalog/internal/service"
	"github.com/mercadito/catalog/catalog/pkg/request"
	"github.com/mercadito/catalog/catalog/pkg/response"
	"github.com/mercadito/catalog/internal/constants"
	inErrors "github.com/mercadito/catalog/internal/errors"
	inHttp "github.com/mercadito/catalog/internal/http"
	"github.com/mercadito/catalog/internal/log"
	"github.com/mercadito/catalog/internal/middleware"
	inOtel "github.com/mercadito/catalog/internal/otel"
)

type CatalogController struct {
	service      *service.CatalogService
	environment  string
	defaultLimit int
	maxLimit     int
}

func AttachCatalogController(
	router *mux.Router,
	svc *service.CatalogService,
	environment string,
	defaultLimit int,
	maxLimit int,
) {
	controller := CatalogController{
		service:      svc,
		environment:  environment,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(
		otelmux.Middleware(constants.AppCatalogService),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	api.HandleFunc("/products", controller.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{productId}/price/{priceId}", controller.UpdatePrice).
		Methods(http.MethodPut)
	api.HandleFunc("/products/inventory", controller.UpdateInventory).Methods(http.MethodPost)
	api.HandleFunc("/health", controller.Health).Methods(http.MethodGet)
}

func (ctrl CatalogController) GetProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController GetProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CatalogController GetProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing query parameters").Logger()
	logger.Trace().Msg("parsing query parameters")
	query, err := ctrl.parseProductQuery(r)
	if err != nil {
		err = fmt.Errorf("failed parsing query parameters with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	logger.Trace().Msg("parsed query parameters")

	logger = logger.With().Str(log.KeyProcess, "getting products").Logger()
	logger.Info().Msg("getting products")
	c = logger.WithContext(c)
	page, err := ctrl.service.GetProducts(c, query)
	if err != nil {
		err = fmt.Errorf("failed getting products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(
			c,
			w,
			statusFromError(err),
			"Failed to fetch products from upstream",
			err.Error(),
		)
		return
	}
	logger.Info().Msg("got products")

	inHttp.WriteJsonResponse(c, w, http.StatusOK, page)
}

func (ctrl CatalogController) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController UpdatePrice")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CatalogController UpdatePrice").
		Logger()

	pathValues := mux.Vars(r)
	productID := pathValues["productId"]
	priceID := pathValues["priceId"]
	logger = logger.With().
		Str(log.KeyProductID, productID).
		Str(log.KeyPriceID, priceID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.UpdatePrice{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, http.StatusBadRequest, "Invalid price value", err.Error())
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, http.StatusBadRequest, "Invalid price value", err.Error())
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "updating price").Logger()
	logger.Info().Msg("updating price")
	c = logger.WithContext(c)
	updated, err := ctrl.service.UpdatePrice(
		c,
		productID,
		priceID,
		decimal.NewFromFloat(reqBody.Price),
	)
	if err != nil {
		err = fmt.Errorf("failed updating price with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		status := statusFromError(err)
		label := "Failed to update price in upstream"
		if status == http.StatusBadRequest {
			label = "Invalid price value"
		}
		inHttp.WriteErrorResponse(c, w, status, label, err.Error())
		return
	}
	logger.Info().Msg("updated price")

	inHttp.WriteJsonResponse(c, w, http.StatusOK, updated)
}

func (ctrl CatalogController) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController UpdateInventory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CatalogController UpdateInventory").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.UpdateInventory{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, http.StatusBadRequest, "Invalid productId or quantity", err.Error())
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, http.StatusBadRequest, "Invalid productId or quantity", err.Error())
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "updating inventory").
		Str(log.KeyProductID, reqBody.ProductID).
		Int(log.KeyQuantity, *reqBody.Quantity).
		Logger()
	logger.Info().Msg("updating inventory")
	c = logger.WithContext(c)
	updated, err := ctrl.service.UpdateInventory(c, reqBody.ProductID, *reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed updating inventory with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		status := statusFromError(err)
		label := "Failed to update inventory in upstream"
		switch status {
		case http.StatusBadRequest:
			label = "Invalid productId or quantity"
		case http.StatusNotFound:
			label = "No prices found for product. Cannot update inventory."
		}
		inHttp.WriteErrorResponse(c, w, status, label, err.Error())
		return
	}
	logger.Info().Msg("updated inventory")

	inHttp.WriteJsonResponse(c, w, http.StatusOK, updated)
}

func (ctrl CatalogController) Health(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController Health")
	defer span.End()

	inHttp.WriteJsonResponse(c, w, http.StatusOK, response.Health{
		Status:      "OK",
		Timestamp:   time.Now().UTC(),
		Environment: ctrl.environment,
	})
}

// parseProductQuery reads pagination and filter parameters. Page and limit are
// clamped the way the API contract describes; filter values must parse or the
// request is rejected.
func (ctrl CatalogController) parseProductQuery(r *http.Request) (service.ProductQuery, error) {
	values := r.URL.Query()
	query := service.ProductQuery{
		Page:   1,
		Limit:  ctrl.defaultLimit,
		Search: values.Get("search"),
	}

	if raw := values.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			query.Page = page
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > ctrl.maxLimit {
				limit = ctrl.maxLimit
			}
			query.Limit = limit
		}
	}

	if raw := values.Get("minPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return query, fmt.Errorf("minPrice must be a number: %w", inErrors.ErrValidation)
		}
		query.MinPrice = &price
	}
	if raw := values.Get("maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return query, fmt.Errorf("maxPrice must be a number: %w", inErrors.ErrValidation)
		}
		query.MaxPrice = &price
	}
	if raw := values.Get("minQuantity"); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("minQuantity must be an integer: %w", inErrors.ErrValidation)
		}
		query.MinQuantity = &quantity
	}
	if raw := values.Get("maxQuantity"); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("maxQuantity must be an integer: %w", inErrors.ErrValidation)
		}
		query.MaxQuantity = &quantity
	}

	return query, nil
}

func statusFromError(err error) int {
	upstreamErr := &inErrors.UpstreamError{}
	switch {
	case errors.Is(err, inErrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrUpstreamTimeout):
		return http.StatusInternalServerError
	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
