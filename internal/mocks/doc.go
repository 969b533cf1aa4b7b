// Package mocks provides shared test doubles for the services and handlers.
//
// Stores is an in-memory dataset implementing every store interface with the
// same cascade, uniqueness and relation-loading behaviour as the PostgreSQL
// stores, so service and handler tests run without a database:
//
//	stores := mocks.NewStores()
//	svc := service.NewCategoryService(stores.Categories, nil, logger)
//
// The remaining mocks follow one pattern: exported function fields or
// default values decide the result, and calls are recorded for assertions.
// TestifyMockUserStore uses testify/mock for tests that need to inject store
// failures.
package mocks
