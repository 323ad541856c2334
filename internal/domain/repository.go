package domain

import "context"

// KeyValueStore is durable storage for serialized records.
// Get returns ErrKeyNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// FeedSource supplies the raw text of the product feed
type FeedSource interface {
	Fetch(ctx context.Context) (string, error)
}

// CartStore is the cart as seen by the presentation layer
type CartStore interface {
	Add(product Product, qty int)
	Remove(id string)
	SetQty(id string, qty int) bool
	Clear()
	Count() int
	Subtotal() float64
	List() []LineItem
}
