// Package catalog holds the product and queue-display model of precario.
//
// Products are priced items that can be printed as shelf labels; queues are the
// small records an Android TV app reads to show "now serving" screens. This
// package owns validation, normalization, sorting and id generation for both,
// and exposes Service as the single entry point used by the web and CLI layers.
//
// Storage is not done here. Service depends on ProductRepository and
// QueueRepository, implemented by internal/store.
//
// Prices are kept as the string the staff typed, with a comma decimal
// separator ("24,95"). ParsePrice turns them into cents when arithmetic or
// numeric ordering is needed.
package catalog
