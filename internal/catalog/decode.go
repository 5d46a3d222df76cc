package catalog

import (
	"encoding/json"
	"fmt"
)

// DecodeProduct reads a JSON product document with FromDocument defaults.
func DecodeProduct(raw []byte) (Product, error) {
	var doc ProductDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return FromDocument(doc), nil
}

// DecodeQueue reads a JSON queue document with FromQueueDocument defaults.
func DecodeQueue(raw []byte) (Queue, error) {
	var doc QueueDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Queue{}, fmt.Errorf("decode queue: %w", err)
	}
	return FromQueueDocument(doc), nil
}
