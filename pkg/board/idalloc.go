package board

// IDAllocator hands out monotonically increasing GemIDs. A gem's id is stable
// for its lifetime and is never reused after destruction, so a
// single counter per Engine is sufficient; it never needs to recycle values.
type IDAllocator struct {
	next GemID
}

// NewIDAllocator creates an allocator starting at id 1 (0 is reserved to mean
// "no gem" in contexts that need a zero value).
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns the next unused GemID.
func (a *IDAllocator) Next() GemID {
	id := a.next
	a.next++
	return id
}
