package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mercadito/catalog/catalog/internal/otel"
	"github.com/mercadito/catalog/internal/config"
	inErrors "github.com/mercadito/catalog/internal/errors"
	inHttp "github.com/mercadito/catalog/internal/http"
	"github.com/mercadito/catalog/internal/log"
	inOtel "github.com/mercadito/catalog/internal/otel"
)

// Client is the gateway to the remote product-and-price platform. It owns
// authentication headers, per-call timeouts and error translation; nothing
// above it talks to the upstream directly.
type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	locationID string
	apiVersion string
	timeout    time.Duration
}

func NewClient(cfg config.Upstream) *Client {
	return &Client{
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		locationID: cfg.LocationID,
		apiVersion: cfg.APIVersion,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Call performs one upstream request. An empty response body decodes as an
// empty object; out is left untouched. Failures are always propagated, never
// swallowed at this layer.
func (cl *Client) Call(
	c context.Context,
	method string,
	endpoint string,
	body interface{},
	out interface{},
) error {
	c, span := otel.Tracer.Start(c, "UpstreamClient Call")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UpstreamClient Call").
		Str(log.KeyMethod, method).
		Str(log.KeyEndpoint, endpoint).
		Logger()

	c, cancel := context.WithTimeout(c, cl.timeout)
	defer cancel()

	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	callURL := cl.baseURL + endpoint + separator + "locationId=" + url.QueryEscape(cl.locationID)

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("failed marshaling request body with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(c, method, callURL, reqBody)
	if err != nil {
		err = fmt.Errorf("failed creating upstream request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cl.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Version", cl.apiVersion)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.KeyHeaderRequestId, requestID)
	}

	logger.Trace().Msg("calling upstream")
	resp, err := cl.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("calling %s %s: %w", method, endpoint, inErrors.ErrUpstreamTimeout)
		} else {
			err = fmt.Errorf("failed calling %s %s with error=%w", method, endpoint, err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed reading upstream response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err = &inErrors.UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("called upstream")

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		err = fmt.Errorf("failed decoding upstream response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

// ListProducts fetches one page of the product list. The second return value
// is the total the upstream reports, normalized; zero means "unknown".
func (cl *Client) ListProducts(c context.Context, limit, offset int) ([]RawProduct, int, error) {
	out := productListResponse{}
	endpoint := fmt.Sprintf("/products/?limit=%d&offset=%d", limit, offset)
	err := cl.Call(c, http.MethodGet, endpoint, nil, &out)
	if err != nil {
		return nil, 0, err
	}
	return out.Products, int(out.Total), nil
}

// ListPrices fetches the price records of one product. Records are returned
// raw so read and write paths can decode exactly what they need.
func (cl *Client) ListPrices(c context.Context, productID string) ([]json.RawMessage, error) {
	out := priceListResponse{}
	endpoint := fmt.Sprintf("/products/%s/price/", url.PathEscape(productID))
	err := cl.Call(c, http.MethodGet, endpoint, nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Prices, nil
}

// UpdatePrice PUTs a price record and returns the upstream's view of it.
func (cl *Client) UpdatePrice(
	c context.Context,
	productID string,
	priceID string,
	body interface{},
) (RawPrice, error) {
	out := RawPrice{}
	endpoint := fmt.Sprintf(
		"/products/%s/price/%s",
		url.PathEscape(productID),
		url.PathEscape(priceID),
	)
	err := cl.Call(c, http.MethodPut, endpoint, body, &out)
	if err != nil {
		return RawPrice{}, err
	}
	return out, nil
}
