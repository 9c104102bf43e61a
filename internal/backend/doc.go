// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package backend is the HTTP client for the trace backend. It lists runs and
// their spans and fetches run diffs: the backend pairs spans across two runs
// and this package only decodes the result.
//
// Every response is an envelope with "ok": true. Failures carry a "detail"
// message and surface as *APIError, which unwraps to ErrRunNotFound or
// ErrUnauthorized where the status code allows.
//
// Responses that can no longer change, spans and diffs of runs that have
// finished, are cached through a cacheutil.Store.
package backend
