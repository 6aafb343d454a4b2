// Package catalogapi fetches the product catalog over HTTP and provides a
// small development server that serves one.
//
// # Overview
//
// The catalog is a single JSON document:
//
//	GET /data.json
//	{"products": [{"id": "1", "title": "...", "price": 120, "image": "...",
//	               "type": "Furniture", "description": "..."}]}
//
// The client treats the document as all-or-nothing. Transport failures,
// non-2xx responses, malformed JSON and a document without a products array
// are all reported as *NetworkError and no products are returned.
//
// # Client
//
// NewClient accepts either a full URL or a bare host:port, in which case the
// http scheme and the /data.json path are filled in:
//
//	c, err := catalogapi.NewClient("127.0.0.1:8787")
//	products, err := c.FetchProducts(ctx)
//
// Requests carry a shopfront User-Agent and a 10 second timeout. The caller's
// context cancels an in-flight request.
//
// # Development server
//
// `shopfront catalog serve` runs NewRouter on a chi router:
//
//	/data.json   catalog (embedded sample or --file)
//	/healthz     liveness probe
//	/metrics     Prometheus metrics, when a handler is supplied
//
// Requests are tagged with a request id and logged through slog when a
// logger is configured. Serve shuts the server down gracefully when its
// context is cancelled.
//
// # Error Handling
//
// NetworkError carries the URL and either the HTTP status or the underlying
// cause, which is available through errors.Unwrap. The catalog view shows it
// in an error card with a manual retry; nothing retries automatically.
package catalogapi
