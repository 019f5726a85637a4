package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mercadito/catalog/internal/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	statusCode int,
	body interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	w.Header().Add(KeyHeaderContentType, ValueHeaderApplicationJson)
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}

// WriteErrorResponse emits the service-wide error envelope.
func WriteErrorResponse(
	c context.Context,
	w http.ResponseWriter,
	statusCode int,
	errorLabel string,
	message string,
) {
	WriteJsonResponse(c, w, statusCode, map[string]interface{}{
		"error":   errorLabel,
		"message": message,
	})
}
