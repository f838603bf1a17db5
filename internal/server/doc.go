// Package server provides HTTP routing, middleware, and the admin API for the
// label catalog.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Admin API
//
// [CatalogHandler] serves the JSON CRUD surface under /api/. Path segments
// that identify an entity accept either its slug or its primary id; both are
// resolved through catalog.ResolveByIdentifier, so pretty URLs win and old id
// links keep working. Deleting an artist runs through the delete guard and
// answers 409 while releases still reference it.
//
// Image uploads are multipart POSTs to /api/{collection}/{identifier}/image,
// sniffed and stored on disk by [UploadStore] with the entity's image field
// pointing at the served path.
//
// # Public pages
//
// The internal/web package serves the public site through the same router;
// see its doc for the page and static build surface.
package server
