package apiclient

import (
	"context"
	"net/url"
)

// getResource performs a GET request to the given path and decodes the response
// body into a value of type T. Returns a pointer to the decoded value.
//
// Example:
//
//	entry, err := getResource[namespace.Entry](ctx, c, "/api/v1/namespace/entries?path=/a")
func getResource[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var result T
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// createResource performs a POST request to the given path with the provided body
// and decodes the response into a value of type T. Returns a pointer to the decoded
// value.
func createResource[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	var result T
	if err := c.post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// withPath appends a ?path= query parameter to an endpoint.
func withPath(endpoint, p string) string {
	return endpoint + "?" + url.Values{"path": {p}}.Encode()
}
