// Package models defines the data types exchanged between the FLO adaptor and its host.
//
// The package contains two categories of types:
//
// 1. Interchange types shared with other catalog adaptors:
//   - [Song] : track metadata plus per-catalog identifiers
//   - [Playlist] : ordered tracks with name, description and pre-generated URLs
//   - [Adaptor] : the capability set the host consumes
//
// 2. Persistent entities used by the local match cache:
//   - [Match] : a resolved (artist, title) to FLO track identifier pairing
//
// Songs and playlists are values; use [Song.Clone] and [Playlist.Clone] before handing them
// across component boundaries when the receiver may mutate them.
package models
