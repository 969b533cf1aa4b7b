// Package service contains the blog's use cases: the business rules behind
// every resource endpoint.
//
// Services receive the calling domain.Principal explicitly and enforce
// ownership themselves; authentication and role checks happen in the HTTP
// middleware before a service is reached. Failures the caller should see
// are returned as domain errors (field errors, *domain.Error kinds), store
// not-found and unique violations are translated into them, and anything
// unexpected is wrapped in a ServiceError.
//
// Services depend only on the store interfaces, the blob store and the
// event emitter, never on a concrete database.
package service
