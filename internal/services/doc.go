// Package services implements the FLO (music-flo.com) HTTP API client used by the adaptor.
//
// # Endpoints
//
// [FloService] covers the four calls the adaptor makes:
//   - Search: GET www.music-flo.com/api/search/v2/search, returning ranked result groups
//   - SignIn: POST api.music-flo.com/auth/v3/sign/in with member credentials and a device ID
//   - Playlist: GET api.music-flo.com/personal/v1/playlist/{id}?depth=2&mixYn=N
//   - CreatePlaylist: POST api.music-flo.com/personal/v2/myplaylist with the x-gm-access-token header
//
// [FloService.ResolveURL] follows a public share link (at most two redirects) and returns the
// final path, which carries the obfuscated playlist ID.
//
// # Error Handling
//
// Errors wrap sentinels from the shared package:
//   - [shared.ErrTransport] : network failure, non-2xx status ([APIError]) or a body that is not JSON
//   - [shared.ErrAuthentication] : sign-in rejected (4xx) or no token in the response
//
// Nothing is retried. Requests are throttled by a shared rate limiter.
package services
