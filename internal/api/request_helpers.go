package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/validate"
)

// errRouteNotFound is returned for path parameters that could never match a
// route, such as a non-numeric ID.
var errRouteNotFound = domain.NotFound("The requested resource was not found.")

// getPathID extracts a positive integer path parameter.
func getPathID(r *http.Request, paramName string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, errRouteNotFound
	}
	return id, nil
}

// decodeBody reads the JSON object in the request body and checks it
// against schema. On failure the error response has been written and ok is
// false.
func decodeBody(w http.ResponseWriter, r *http.Request, schema validate.Schema) (validate.Data, bool) {
	data, err := shared.DecodeObject(r)
	if err != nil {
		invalidJSON(w, r, err)
		return nil, false
	}
	if err := schema.Check(data); err != nil {
		respondWithServiceError(w, r, err)
		return nil, false
	}
	return data, true
}

// optString returns a pointer to data[key] when it holds a string.
func optString(data validate.Data, key string) *string {
	s, ok := validate.String(data, key)
	if !ok {
		return nil
	}
	return &s
}

// optStringList returns a pointer to data[key] when it holds a string list.
func optStringList(data validate.Data, key string) *[]string {
	list, ok := validate.StringList(data, key)
	if !ok {
		return nil
	}
	return &list
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func isForm(r *http.Request) bool {
	return isMultipart(r) ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// formData flattens a parsed form into a decoded-JSON shaped object, keeping
// the first value of each key.
func formData(r *http.Request) (validate.Data, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	data := validate.Data{}
	for key, values := range r.PostForm {
		if len(values) > 0 {
			data[key] = values[0]
		}
	}
	return data, nil
}

// readUpload loads one multipart file fully into memory.
func readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.Upload{}, err
	}
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// message is the data member of responses that only report an outcome.
type message struct {
	Message string `json:"message"`
}
