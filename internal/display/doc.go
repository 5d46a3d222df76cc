// Package display builds the queue feed polled by the TV app.
//
// The feed is a plain JSON document. Its ETag is a content fingerprint:
// SHA-256 over the canonical JSON form of the feed (sorted keys, NFC
// strings, no insignificant whitespace) with a domain prefix, so two
// servers holding the same queues hand out the same ETag and the TV app
// can poll with If-None-Match.
package display
