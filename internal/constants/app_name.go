package constants

const (
	AppCatalogService = "catalog-service"
)
