package buffer

// Buffer accumulates bytes up to a hard limit. The initial capacity is allocated at once, so
// ordinary requests fit without any growth. Past that, the memory grows as usual, but never
// beyond the limit.
type Buffer struct {
	memory  []byte
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, min(initialSize, maxSize)),
		maxSize: maxSize,
	}
}

// Append writes data, checking whether the new amount of bytes doesn't exceed the limit,
// otherwise discarding the data and returning false.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if len(b.memory)+len(elements) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, elements...)
	return true
}

// Bytes returns everything written so far. The slice is valid until the next Append or Clear.
func (b *Buffer) Bytes() []byte {
	return b.memory
}

// Len returns a number of bytes written.
func (b *Buffer) Len() int {
	return len(b.memory)
}

// Cap returns the hard limit.
func (b *Buffer) Cap() int {
	return b.maxSize
}

// Clear just resets the pointer, so old values may be overridden by new ones.
func (b *Buffer) Clear() {
	b.memory = b.memory[:0]
}

// Release drops the memory entirely.
func (b *Buffer) Release() {
	b.memory = nil
}
