package ir

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	ErrNotReserved  = errors.New("instruction slot was not reserved")
	ErrPatchedTwice = errors.New("instruction slot already patched")
	ErrOutOfRange   = errors.New("instruction index out of range")
)

// Store is the program block: an append-only instruction sequence whose
// reserved slots can be overwritten exactly once.
type Store struct {
	code    []Instruction
	pending map[int]bool // reserved index -> still waiting for its patch
}

func NewStore() *Store {
	return &Store{pending: make(map[int]bool)}
}

func (s *Store) Append(in Instruction) int {
	s.code = append(s.code, in)
	return len(s.code) - 1
}

func (s *Store) Reserve() int {
	idx := s.Append(Instruction{})
	s.pending[idx] = true
	return idx
}

func (s *Store) Patch(idx int, in Instruction) error {
	if idx < 0 || idx >= len(s.code) {
		return fmt.Errorf("%w: %d (have %d)", ErrOutOfRange, idx, len(s.code))
	}
	waiting, reserved := s.pending[idx]
	if !reserved {
		return fmt.Errorf("%w: %d", ErrNotReserved, idx)
	}
	if !waiting {
		return fmt.Errorf("%w: %d", ErrPatchedTwice, idx)
	}
	s.code[idx] = in
	s.pending[idx] = false
	return nil
}

func (s *Store) NextIndex() int { return len(s.code) }

func (s *Store) Len() int { return len(s.code) }

// Instructions returns a copy of the program block.
func (s *Store) Instructions() []Instruction {
	out := make([]Instruction, len(s.code))
	copy(out, s.code)
	return out
}

// Pending lists reserved slots that were never patched, in index order.
func (s *Store) Pending() []int {
	var out []int
	for idx, waiting := range s.pending {
		if waiting {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// WriteListing writes one numbered instruction per line.
func (s *Store) WriteListing(w io.Writer, format Format) error {
	bw := bufio.NewWriter(w)
	for i, in := range s.code {
		text := in.String()
		if format == FormatTuple {
			text = in.Tuple()
		}
		if _, err := fmt.Fprintf(bw, "%d\t%s\n", i, text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Temps hands out compiler temporaries. Addresses are never reused.
type Temps struct {
	base, next, word int
}

func NewTemps(base, word int) *Temps {
	return &Temps{base: base, next: base, word: word}
}

func (t *Temps) New() Operand {
	addr := t.next
	t.next += t.word
	return Direct(addr)
}

// Count returns how many temporaries have been handed out.
func (t *Temps) Count() int { return (t.next - t.base) / t.word }

// Owns reports whether addr lies in the temporaries region.
func (t *Temps) Owns(addr int) bool { return addr >= t.base }
