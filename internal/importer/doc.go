// Package importer loads and dumps the catalog in bulk.
//
// Catalog documents are YAML or JSON files holding products and queues in
// their stored shape; they are checked against an embedded CUE schema before
// any record is written. The legacy semicolon separated product list is also
// accepted. Records are upserted through catalog.Service so imports follow the
// same normalization and validation as the web forms.
//
// Watcher turns a directory into an import inbox.
package importer
