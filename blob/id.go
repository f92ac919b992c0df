package blob

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/google/uuid"
)

// BlobID identifies a blob by its content: the center column of its first line
// in bits 20-31, the first row in bits 8-19 and the number of lines in bits 0-7.
type BlobID uint32

// InvalidBlobID marks an absent id (no parent, empty blob)
const InvalidBlobID BlobID = math.MaxUint32

var blobNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("github.com/LdDl/pvblob"))

// NewBlobID derives the id of a line set. Lines are expected to be sorted by (y, x0)
func NewBlobID(lines []HorizontalLine) BlobID {
	if len(lines) == 0 {
		return InvalidBlobID
	}
	return makeBlobID(lines[0], len(lines))
}

func makeBlobID(first HorizontalLine, count int) BlobID {
	center := uint32(first.X0) + uint32(first.X1-first.X0)/2
	return BlobID(center<<20 | (uint32(first.Y)&0xFFF)<<8 | uint32(count)&0xFF)
}

// Valid reports whether id is not InvalidBlobID
func (id BlobID) Valid() bool {
	return id != InvalidBlobID
}

// Position returns the encoded anchor: center column of the first line and its row (both modulo 4096)
func (id BlobID) Position() image.Point {
	return image.Pt(int(uint32(id)>>20), int(uint32(id)>>8&0xFFF))
}

// UUID returns a stable name-based UUID for the id
func (id BlobID) UUID() uuid.UUID {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(id))
	return uuid.NewSHA1(blobNamespace, buf[:])
}

func (id BlobID) String() string {
	if !id.Valid() {
		return "blob<invalid>"
	}
	pos := id.Position()
	return fmt.Sprintf("blob<%d,%d:%d>", pos.X, pos.Y, uint32(id)&0xFF)
}
