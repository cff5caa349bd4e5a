// Package viewmodel turns fetched task, ticket and project snapshots into the
// grouped, sorted and aggregated structures the dashboard and board render.
//
// Every function here is pure: inputs are never mutated and results share no
// state with them, so callers may invoke them concurrently.
package viewmodel

// Bucket holds the items that share one status value, in input order.
type Bucket[S comparable, T any] struct {
	Status S   `json:"status"`
	Items  []T `json:"items"`
	Count  int `json:"count"`
}

// Empty reports a bucket that should render as an explicit empty state.
func (b Bucket[S, T]) Empty() bool {
	return b.Count == 0
}

// Buckets is an ordered status → items mapping.
type Buckets[S comparable, T any] []Bucket[S, T]

// Get returns the items for status, or nil when status has no bucket.
func (bs Buckets[S, T]) Get(status S) []T {
	for _, b := range bs {
		if b.Status == status {
			return b.Items
		}
	}
	return nil
}

// Keys returns the bucket statuses in display order.
func (bs Buckets[S, T]) Keys() []S {
	keys := make([]S, len(bs))
	for i, b := range bs {
		keys[i] = b.Status
	}
	return keys
}

// Total counts items across all buckets.
func (bs Buckets[S, T]) Total() int {
	total := 0
	for _, b := range bs {
		total += b.Count
	}
	return total
}

// BucketByStatus partitions items into one bucket per key, in key order.
// The partition is stable. Items whose status is not among keys are dropped,
// and a repeated key only produces the bucket of its first occurrence.
func BucketByStatus[S comparable, T any](items []T, keys []S, statusOf func(T) S) Buckets[S, T] {
	index := make(map[S]int, len(keys))
	out := make(Buckets[S, T], 0, len(keys))
	for _, key := range keys {
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = len(out)
		out = append(out, Bucket[S, T]{Status: key, Items: []T{}})
	}

	for _, item := range items {
		pos, ok := index[statusOf(item)]
		if !ok {
			continue
		}
		out[pos].Items = append(out[pos].Items, item)
	}
	for i := range out {
		out[i].Count = len(out[i].Items)
	}
	return out
}
