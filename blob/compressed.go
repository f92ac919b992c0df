package blob

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Status byte layout of CompressedBlob
const (
	statusSplit uint8 = 1 << iota
	statusHasParent
	statusTriedToSplit
	statusTag
	statusInstanceSegmentation
	statusRGB
	statusR3G3B2
	statusBinary
)

var statusFlags = [...]struct {
	bit  uint8
	flag Flag
}{
	{statusTag, FlagTag},
	{statusInstanceSegmentation, FlagInstanceSegmentation},
	{statusRGB, FlagRGB},
	{statusR3G3B2, FlagR3G3B2},
	{statusBinary, FlagBinary},
}

// CompressedBlob is the packed at-rest form of a blob: start row, packed lines,
// one status byte, parent id and prediction. Pixels are not kept.
type CompressedBlob struct {
	startY     uint16
	status     uint8
	parentID   BlobID
	prediction Prediction
	lines      []ShortHorizontalLine
}

// NewCompressedBlob packs blob. Rows have to be consecutive and x has to fit into 15 bits
func NewCompressedBlob(blob *Blob) (*CompressedBlob, error) {
	startY, lines, err := CompressLines(blob.lines)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't compress %s", blob.blobID)
	}
	var status uint8
	if blob.IsSplit() {
		status |= statusSplit
	}
	if blob.parentID.Valid() {
		status |= statusHasParent
	}
	if blob.triedToSplit {
		status |= statusTriedToSplit
	}
	for _, it := range statusFlags {
		if blob.flags.Has(it.flag) {
			status |= it.bit
		}
	}
	return &CompressedBlob{
		startY:     startY,
		status:     status,
		parentID:   blob.parentID,
		prediction: blob.prediction.Clone(),
		lines:      lines,
	}, nil
}

func (c *CompressedBlob) StatusByte() uint8 {
	return c.status
}

func (c *CompressedBlob) GetStartY() uint16 {
	return c.startY
}

// GetLines returns packed lines. Be careful: this is not copy of lines, but reference to them
func (c *CompressedBlob) GetLines() []ShortHorizontalLine {
	return c.lines
}

// GetParentID returns parent id, InvalidBlobID when there is none
func (c *CompressedBlob) GetParentID() BlobID {
	if c.status&statusHasParent == 0 {
		return InvalidBlobID
	}
	return c.parentID
}

func (c *CompressedBlob) GetPrediction() Prediction {
	return c.prediction
}

func (c *CompressedBlob) Split() bool        { return c.status&statusSplit != 0 }
func (c *CompressedBlob) TriedToSplit() bool { return c.status&statusTriedToSplit != 0 }
func (c *CompressedBlob) IsTag() bool        { return c.status&statusTag != 0 }
func (c *CompressedBlob) IsBinary() bool     { return c.status&statusBinary != 0 }

// BlobID returns the id the unpacked blob will have
func (c *CompressedBlob) BlobID() BlobID {
	if len(c.lines) == 0 {
		return InvalidBlobID
	}
	return makeBlobID(c.lines[0].Uncompress(c.startY), len(c.lines))
}

// Bounds computes the bounding box without unpacking
func (c *CompressedBlob) Bounds() Rectangle {
	if len(c.lines) == 0 {
		return Rectangle{}
	}
	minX, maxX := math.MaxInt, math.MinInt
	height := 1
	for _, s := range c.lines {
		minX = minInt(minX, int(s.X0()))
		maxX = maxInt(maxX, int(s.X1()))
		if s.EOL() {
			height++
		}
	}
	return NewRect(float64(minX), float64(c.startY), float64(maxX-minX+1), float64(height))
}

// NumPixels returns Σ(x1-x0+1) without unpacking
func (c *CompressedBlob) NumPixels() uint64 {
	var n uint64
	for _, s := range c.lines {
		n += uint64(s.X1()) - uint64(s.X0()) + 1
	}
	return n
}

// Unpack creates a new binary-less blob with the same lines, flags, parent and prediction
func (c *CompressedBlob) Unpack(options ...Option) (*Blob, error) {
	lines := GetLineBuffer(len(c.lines))[:len(c.lines)]
	UncompressBatched(lines, c.startY, c.lines)

	var flags Flags
	for _, it := range statusFlags {
		flags.Set(it.flag, c.status&it.bit != 0)
	}
	blob, err := NewBlob(lines, nil, flags, options...)
	if err != nil {
		return nil, errors.Wrap(err, "Can't unpack compressed blob")
	}
	blob.SetParentID(c.GetParentID())
	blob.SetSplit(c.Split())
	blob.SetTriedToSplit(c.TriedToSplit())
	blob.SetPrediction(c.prediction.Clone())
	return blob, nil
}

const compressedHeaderSize = 2 + 1 + 4 + 1 + 1 + 2

// MarshalBinary encodes the blob little endian:
// start_y u16, status u8, parent u32, class u8, probability u8, pose count u16,
// pose (f64 x, f64 y)..., line count u32, lines u32...
func (c *CompressedBlob) MarshalBinary() ([]byte, error) {
	if len(c.prediction.Pose) > math.MaxUint16 {
		return nil, errors.Errorf("Can't marshal %d pose points", len(c.prediction.Pose))
	}
	if uint64(len(c.lines)) > math.MaxUint32 {
		return nil, errors.Errorf("Can't marshal %d lines", len(c.lines))
	}
	buf := make([]byte, 0, compressedHeaderSize+16*len(c.prediction.Pose)+4+4*len(c.lines))
	buf = binary.LittleEndian.AppendUint16(buf, c.startY)
	buf = append(buf, c.status)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.parentID))
	buf = append(buf, c.prediction.classByte(), c.prediction.Probability)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(c.prediction.Pose)))
	for _, p := range c.prediction.Pose {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.Y))
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.lines)))
	for _, s := range c.lines {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(s))
	}
	return buf, nil
}

// UnmarshalBinary decodes data written by MarshalBinary
func (c *CompressedBlob) UnmarshalBinary(data []byte) error {
	if len(data) < compressedHeaderSize {
		return errors.Wrapf(ErrShortBuffer, "Can't read header from %d bytes", len(data))
	}
	var out CompressedBlob
	out.startY = binary.LittleEndian.Uint16(data[0:])
	out.status = data[2]
	out.parentID = BlobID(binary.LittleEndian.Uint32(data[3:]))
	class, probability := data[7], data[8]
	poseCount := int(binary.LittleEndian.Uint16(data[9:]))
	data = data[compressedHeaderSize:]

	if len(data) < 16*poseCount+4 {
		return errors.Wrapf(ErrShortBuffer, "Can't read %d pose points", poseCount)
	}
	var pose []Point
	if poseCount > 0 {
		pose = make([]Point, poseCount)
		for i := range pose {
			pose[i].X = math.Float64frombits(binary.LittleEndian.Uint64(data[16*i:]))
			pose[i].Y = math.Float64frombits(binary.LittleEndian.Uint64(data[16*i+8:]))
		}
	}
	out.prediction = Prediction{ClassID: class, Probability: probability, Pose: pose, valid: class != NoClass}
	data = data[16*poseCount:]

	count := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if len(data) < 4*count {
		return errors.Wrapf(ErrShortBuffer, "Can't read %d packed lines", count)
	}
	out.lines = make([]ShortHorizontalLine, count)
	for i := range out.lines {
		out.lines[i] = ShortHorizontalLine(binary.LittleEndian.Uint32(data[4*i:]))
	}
	*c = out
	return nil
}
