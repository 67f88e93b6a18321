package domain

// CurrencyInfo represents a supported currency in the registry.
type CurrencyInfo struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int32  `json:"precision"`    // Minor-unit decimal places
	AuditFields
}
