package domain

import "errors"

var (
	// ErrInvalidRecord is returned when a record is missing required fields
	ErrInvalidRecord = errors.New("invalid record")

	// ErrSourceUnavailable is returned when a required source file or database cannot be opened
	ErrSourceUnavailable = errors.New("record source unavailable")

	// ErrShopifyAPIFailure is returned when a Shopify Admin API request fails
	ErrShopifyAPIFailure = errors.New("shopify API request failed")

	// ErrEmptyCatalog is returned when a sync is attempted with no catalog entries
	ErrEmptyCatalog = errors.New("catalog has no entries")
)
