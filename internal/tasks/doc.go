// Package tasks prepares playlists for publishing to FLO with real-time progress reporting.
//
// # Core Operations
//
//  1. [Planner.Plan] : resolve every track that lacks a FLO ID
//     - Tracks that already carry a FLO ID are kept as-is
//     - The rest are resolved one at a time through a [TrackFinder], throttled by a rate limiter
//     - Unresolved tracks are dropped from the output playlist and reported in [PlanResult.Missing]
//
//  2. [Planner.Run] : Plan, then publish the planned playlist through a [Publisher]
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Updates use select with default so a
// slow or absent reader never blocks planning.
//
// Resolution errors (transport failures, cancellation) abort the plan; a track that simply has no
// match is not an error.
package tasks
