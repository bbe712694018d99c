package zstdstream

import (
	"sync"
)

// Byte-slice pooling with power-of-two size classes. The auto-growing
// output sink, the stream pumps and the io adapters all allocate their
// working blocks here so that steady-state streaming does not churn the
// garbage collector.

const (
	bufferPoolMinClass = 10 // 1 KiB
	bufferPoolMaxClass = 25 // 32 MiB
)

var bufferPools [bufferPoolMaxClass - bufferPoolMinClass + 1]sync.Pool

// poolClass returns the index of the smallest size class holding size
// bytes, or -1 when the size is outside the pooled range.
func poolClass(size int) int {
	if size <= 0 || size > 1<<bufferPoolMaxClass {
		return -1
	}
	for class := bufferPoolMinClass; class <= bufferPoolMaxClass; class++ {
		if size <= 1<<class {
			return class - bufferPoolMinClass
		}
	}
	return -1
}

// GetBuffer returns a slice of exactly size bytes, backed by pooled
// memory when the size fits a pool class. Contents are unspecified.
func GetBuffer(size int) []byte {
	if size <= 0 {
		return nil
	}
	class := poolClass(size)
	if class < 0 {
		return make([]byte, size)
	}
	if v := bufferPools[class].Get(); v != nil {
		return (*(v.(*[]byte)))[:size]
	}
	return make([]byte, size, 1<<(class+bufferPoolMinClass))[:size]
}

// PutBuffer returns a buffer obtained from GetBuffer to its pool. Buffers
// whose capacity does not match a pool class are dropped for the garbage
// collector.
func PutBuffer(b []byte) {
	c := cap(b)
	if c < 1<<bufferPoolMinClass || c > 1<<bufferPoolMaxClass {
		return
	}
	// Only capacities that are exact class sizes re-enter the pool, so a
	// pooled buffer always satisfies the class it is filed under.
	for class := bufferPoolMinClass; class <= bufferPoolMaxClass; class++ {
		if c == 1<<class {
			b = b[:0]
			bufferPools[class-bufferPoolMinClass].Put(&b)
			return
		}
	}
}
