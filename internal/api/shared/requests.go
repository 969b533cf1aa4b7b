package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxJSONBodyBytes caps the JSON bodies read by DecodeObject.
const MaxJSONBodyBytes = 1 << 20

var (
	// ErrNotObject is returned by DecodeObject when the body is valid JSON
	// but not an object.
	ErrNotObject = errors.New("expected a JSON object")

	// ErrBodyTooLarge is returned by DecodeObject when the body exceeds
	// MaxJSONBodyBytes.
	ErrBodyTooLarge = errors.New("request body too large")
)

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// DecodeObject reads the whole body, up to MaxJSONBodyBytes, as one JSON
// object. An empty body decodes to an empty object.
func DecodeObject(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxJSONBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	data, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return data, nil
}
