package space

import (
	"fmt"
	"strings"
)

// JoinRecord describes a logical value that is stored split across multiple
// physical locations, for example a 64-bit value held in two 32-bit
// registers. The pieces are listed from most significant to least
// significant. The unified varnode gives the value a single synthetic
// address in the join space.
//
// Records are created lazily by the manager and never mutated or removed.
type JoinRecord struct {
	pieces  []Varnode
	unified Varnode
}

// NumPieces returns the number of physical pieces of the record.
func (j *JoinRecord) NumPieces() int { return len(j.pieces) }

// Piece returns the i-th piece, counting from the most significant.
func (j *JoinRecord) Piece(i int) Varnode { return j.pieces[i] }

// Unified returns the varnode representing the whole value in the join space.
func (j *JoinRecord) Unified() Varnode { return j.unified }

// IsFloatExtension returns true if the record represents a narrower physical
// register treated as a wider logical float value instead of a true
// multi-location split. Such records have exactly one piece.
func (j *JoinRecord) IsFloatExtension() bool { return len(j.pieces) == 1 }

// Compare orders records lexicographically by their piece sequences.
// A record whose pieces equal a prefix of another record's pieces
// sorts first. The resulting order is a strict total order and is used
// to deduplicate records.
func (j *JoinRecord) Compare(other *JoinRecord) int {
	n := len(j.pieces)
	if len(other.pieces) < n {
		n = len(other.pieces)
	}
	for i := 0; i < n; i++ {
		if c := j.pieces[i].Compare(other.pieces[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(j.pieces), len(other.pieces))
}

// referencesSpace returns true if any piece of the record lives in the
// given space.
func (j *JoinRecord) referencesSpace(spc *AddrSpace) bool {
	for _, piece := range j.pieces {
		if piece.Space == spc {
			return true
		}
	}
	return false
}

// String returns the record in the form "join[ram:0x0:4,ram:0x4:4]".
func (j *JoinRecord) String() string {
	parts := make([]string, 0, len(j.pieces))
	for _, piece := range j.pieces {
		parts = append(parts, piece.String())
	}
	return fmt.Sprintf("join[%s]", strings.Join(parts, ","))
}
