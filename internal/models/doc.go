// Package models defines the catalog content entities and the admin identity.
//
// Content entities:
//   - [Banner] : hero carousel slide with up to five media URLs
//   - [VideoCard] : video pack card with a cover and up to three previews
//   - [Notice] : dated announcement
//   - [PromoCard] : singleton promotional card, one per [Slot]
//
// Collection entities implement [Entity], which the repositories use to assign identifiers,
// recompute sort positions, collect media URLs for cleanup and validate before persisting.
//
// [AdminUser] is transient and only exists for an authenticated admin session.
package models
