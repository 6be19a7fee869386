// Package httputil provides the HTTP plumbing shared by remote layout
// clients.
//
// # Overview
//
//   - [Client]: JSON requests against a base URL with status classification
//   - [Backoff]: the retry policy for remote reads, with exponential waits
//
// # Status classification
//
// [Client.Do] maps responses onto coded errors from pkg/errors:
//
//   - 2xx: success; the body is decoded into out unless it is empty
//   - 404: NOT_FOUND
//   - 5xx and transport failures: NETWORK_ERROR wrapped in [RetryableError]
//   - other: the code and message from the JSON error body
//     ({"code": "...", "error": "..."}), or NETWORK_ERROR
//
// # Retry
//
// [Backoff.Do] only retries errors wrapped in [RetryableError]:
//
//	err := httputil.DefaultBackoff.Do(ctx, func(ctx context.Context) error {
//	    return client.Do(ctx, http.MethodGet, "/api/layouts/four-grid/rows", nil, &rec)
//	})
//
// Saves are never retried; only reads go through a Backoff.
package httputil
