// Package httpclient provides a generic helper for GET-and-decode calls
// against JSON REST APIs.
package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

// GetResource performs a GET request against baseURL+endpoint and decodes the
// JSON response body into T. Responses with a status code outside
// allowedStatusCodes are treated as errors.
func GetResource[T any](client *http.Client, baseURL, endpoint string, allowedStatusCodes []int) (T, error) {
	var resource T

	resp, err := client.Get(baseURL + endpoint)
	if err != nil {
		return resource, fmt.Errorf("couldn't get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if !slices.Contains(allowedStatusCodes, resp.StatusCode) {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return resource, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return resource, fmt.Errorf("couldn't decode response from %s: %w", endpoint, err)
	}

	return resource, nil
}
