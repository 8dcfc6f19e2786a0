// Package sdk is the Go client for the crimedex search API.
//
// Client issues search calls over HTTP. Session layers the interactive query
// flow on top of any Searcher: it debounces text edits, discards responses
// of superseded requests, and accumulates result pages in order. Watchlist
// tracks optimistic membership mutations against an external store.
package sdk
