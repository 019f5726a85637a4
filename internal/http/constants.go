package http

const (
	KeyHeaderContentType = "Content-Type"
	KeyHeaderRequestId   = "X-Request-Id"

	ValueHeaderApplicationJson = "application/json"
)
