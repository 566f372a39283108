// Package repositories implements SQLite persistence for cached track matches.
//
// Key Implementations:
//   - [MatchRepository] : models.Repository[*models.Match] keyed by UUID, with lookups by normalized (artist, title)
//   - [MatchCacheAdapter] : resolver.MatchCache backed by a [MatchRepository]
//
// The schema comes from the embedded migrations in the shared package. Matches are hard-deleted;
// a stale match is simply overwritten by the next successful search.
package repositories
