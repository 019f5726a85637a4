package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyCacheKey           = "cacheKey"
	KeyEndpoint           = "endpoint"
	KeyMethod             = "method"
	KeyOffset             = "offset"
	KeyTotal              = "total"
	KeyProductID          = "productId"
	KeyPriceID            = "priceId"
	KeyQuantity           = "quantity"
	KeyPrice              = "price"
	KeyProductCount       = "productCount"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestProcessedAt = "requestProcessedAt"
)
