// Package web serves the back-office pages, the JSON API and the display feed.
//
// Pages and /api/ routes sit behind auth.Middleware. The API answers with the
// same {status, data, error} envelope the command line prints in JSON mode.
// /api/display/queues is the exception: it is polled by the TV app, returns
// the bare display.Feed and is guarded only by an optional display token.
package web
