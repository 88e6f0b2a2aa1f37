// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package services provides suture.Service wrappers for Marquee components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve(ctx) error and names itself through fmt.Stringer for supervisor logs.

HTTPServerService:
  - Runs *http.Server.ListenAndServe in a goroutine
  - Drains connections with Shutdown when the context is canceled
  - Treats http.ErrServerClosed as a clean exit

PeriodicTask:
  - Calls a maintenance function on a ticker
  - Logs and counts failed runs instead of returning them
  - Used for profile store value log garbage collection

The event router (events.Router) already implements Serve and String and is
added to the tree without a wrapper.
*/
package services
