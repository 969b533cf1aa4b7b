// Package api serves the blog over HTTP. It decodes and checks request
// bodies, calls the services and renders their results as JSON:API
// style envelopes.
package api
