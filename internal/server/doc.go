// Package server serves the read-only JSON catalog over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging], [Recover] and [RateLimit] cover request logging, panic recovery and throttling.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /health").
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// [CatalogHandler] serves:
//   - GET /api/catalog : banners, videos, notices and both promo slots in one document
//   - GET /health : liveness plus whether a backend is configured
package server
