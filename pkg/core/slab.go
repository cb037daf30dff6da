package core

// slabChunk is the number of values allocated together. Chunks are never
// reallocated, so pointers handed out by Alloc stay valid until Reset.
const slabChunk = 32

// Slab hands out pointers to zeroed values of T and releases all of them at
// once on Reset. It is not safe for concurrent use; each worker owns its own.
type Slab[T any] struct {
	chunks [][]T
	chunk  int // index of the chunk being filled
	used   int // values handed out from chunks[chunk]
}

// Alloc returns a pointer to a zero T owned by the slab
func (s *Slab[T]) Alloc() *T {
	if len(s.chunks) == 0 {
		s.chunks = append(s.chunks, make([]T, slabChunk))
	}
	if s.used == slabChunk {
		s.chunk++
		s.used = 0
		if s.chunk == len(s.chunks) {
			s.chunks = append(s.chunks, make([]T, slabChunk))
		}
	}
	v := &s.chunks[s.chunk][s.used]
	s.used++
	return v
}

// Len returns the number of live values
func (s *Slab[T]) Len() int {
	if len(s.chunks) == 0 {
		return 0
	}
	return s.chunk*slabChunk + s.used
}

// Reset zeroes every handed-out value and makes the storage reusable.
// Pointers returned before Reset must not be used afterwards.
func (s *Slab[T]) Reset() {
	for i := 0; i < s.chunk && i < len(s.chunks); i++ {
		clear(s.chunks[i])
	}
	if s.chunk < len(s.chunks) {
		clear(s.chunks[s.chunk][:s.used])
	}
	s.chunk = 0
	s.used = 0
}
