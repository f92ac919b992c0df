package blob

import (
	"fmt"
	"image"
	"math"
	"unsafe"

	"github.com/pkg/errors"
)

// Blob is one 8-connected region: its sorted lines, optional pixel data and
// lazily computed properties, moments and recount.
// A Blob is not safe for concurrent use.
type Blob struct {
	lines        []HorizontalLine
	pixels       []byte
	flags        Flags
	triedToSplit bool
	parentID     BlobID
	blobID       BlobID
	prediction   Prediction

	properties properties
	moments    Moments

	recountThreshold int32
	recountValue     float64
	recountReady     bool

	opts *Options
}

type properties struct {
	bounds    Rectangle
	numPixels uint64
	center    Point
	ready     bool
}

// NewBlob takes ownership of lines and pixels (nil when no pixel data is stored).
// Pixel length must equal num_pixels * channels of the encoding given by flags.
func NewBlob(lines []HorizontalLine, pixels []byte, flags Flags, options ...Option) (*Blob, error) {
	blob := &Blob{
		lines:    lines,
		pixels:   pixels,
		flags:    flags,
		parentID: InvalidBlobID,
		opts:     defaultOptions,
	}
	for _, option := range options {
		option(blob)
	}
	if err := blob.checkPixels(blob.pixels); err != nil {
		return nil, err
	}
	if linesIllegal(blob.lines) {
		if blob.opts.CorrectIllegalLines {
			blob.lines, blob.pixels = RepairLines(blob.lines, blob.pixels, blob.Channels())
		} else {
			warnIllegalLines(blob.opts.Logger, blob.lines)
		}
	}
	blob.blobID = NewBlobID(blob.lines)
	return blob, nil
}

// NewBlobFromLines creates a binary blob (no pixel data)
func NewBlobFromLines(lines []HorizontalLine, options ...Option) (*Blob, error) {
	return NewBlob(lines, nil, FlagsForChannels(0), options...)
}

func (blob *Blob) checkPixels(pixels []byte) error {
	if pixels == nil {
		return nil
	}
	want := countPixels(blob.lines) * uint64(blob.Channels())
	if uint64(len(pixels)) != want {
		return errors.Wrapf(ErrChannelMismatch, "Can't use %d bytes of pixels for %d bytes expected by %s", len(pixels), want, blob.Encoding())
	}
	return nil
}

// GetLines returns blob's lines. Be careful: this is not copy of lines, but reference to them
func (blob *Blob) GetLines() []HorizontalLine {
	return blob.lines
}

// GetPixels returns stored pixels (nil when the blob has none)
func (blob *Blob) GetPixels() []byte {
	return blob.pixels
}

// HasPixels reports whether pixel data is stored
func (blob *Blob) HasPixels() bool {
	return blob.pixels != nil
}

// SetPixels replaces pixel data; nil drops it
func (blob *Blob) SetPixels(pixels []byte) error {
	if err := blob.checkPixels(pixels); err != nil {
		return errors.Wrapf(err, "Can't set pixels of %s", blob.blobID)
	}
	blob.pixels = pixels
	blob.recountReady = false
	return nil
}

func (blob *Blob) GetFlags() Flags {
	return blob.flags
}

// Encoding returns how stored pixels are laid out
func (blob *Blob) Encoding() Encoding {
	return blob.flags.Encoding()
}

// Channels returns bytes stored per pixel
func (blob *Blob) Channels() int {
	return blob.Encoding().Channels()
}

func (blob *Blob) IsRGB() bool                  { return blob.flags.Has(FlagRGB) }
func (blob *Blob) IsR3G3B2() bool               { return blob.flags.Has(FlagR3G3B2) }
func (blob *Blob) IsBinary() bool               { return blob.flags.Has(FlagBinary) }
func (blob *Blob) IsTag() bool                  { return blob.flags.Has(FlagTag) }
func (blob *Blob) IsInstanceSegmentation() bool { return blob.flags.Has(FlagInstanceSegmentation) }
func (blob *Blob) IsSplit() bool                { return blob.flags.Has(FlagSplit) }

// SetSplit marks the blob as result of splitting another one
func (blob *Blob) SetSplit(split bool) {
	if split && !blob.parentID.Valid() {
		blob.opts.Logger.Infof("blob %s is marked as split without a parent", blob.blobID)
	}
	blob.flags.Set(FlagSplit, split)
}

// SetTag marks the blob as a tag
func (blob *Blob) SetTag(tag bool) {
	blob.flags.Set(FlagTag, tag)
}

// SetInstanceSegmentation marks pixels as coming from an instance segmentation mask
func (blob *Blob) SetInstanceSegmentation(v bool) {
	blob.flags.Set(FlagInstanceSegmentation, v)
}

func (blob *Blob) TriedToSplit() bool {
	return blob.triedToSplit
}

func (blob *Blob) SetTriedToSplit(v bool) {
	blob.triedToSplit = v
}

// GetParentID returns the id of the blob this one was split from (InvalidBlobID if none)
func (blob *Blob) GetParentID() BlobID {
	return blob.parentID
}

// SetParentID sets the parent; the split flag follows validity of the id
func (blob *Blob) SetParentID(parent BlobID) {
	blob.parentID = parent
	blob.SetSplit(parent.Valid())
}

// GetBlobID returns the content-derived id assigned at construction
func (blob *Blob) GetBlobID() BlobID {
	return blob.blobID
}

func (blob *Blob) GetPrediction() Prediction {
	return blob.prediction
}

func (blob *Blob) SetPrediction(prediction Prediction) {
	blob.prediction = prediction
}

// Options returns the options the blob was created with
func (blob *Blob) Options() Options {
	return *blob.opts
}

// Empty reports whether the blob covers no pixel
func (blob *Blob) Empty() bool {
	return len(blob.lines) == 0
}

// AddOffset translates the blob. Cached geometry is invalidated, the id is kept.
func (blob *Blob) AddOffset(offset image.Point) error {
	if offset == (image.Point{}) {
		return nil
	}
	for _, line := range blob.lines {
		if int(line.Y)+offset.Y < 0 || int(line.Y)+offset.Y > math.MaxUint16 ||
			int(line.X0)+offset.X < 0 || int(line.X1)+offset.X > math.MaxUint16 {
			return errors.Wrapf(ErrCoordinateRange, "Can't move %s of %s by %v", line, blob.blobID, offset)
		}
	}
	for i := range blob.lines {
		blob.lines[i].Y = uint16(int(blob.lines[i].Y) + offset.Y)
		blob.lines[i].X0 = uint16(int(blob.lines[i].X0) + offset.X)
		blob.lines[i].X1 = uint16(int(blob.lines[i].X1) + offset.X)
	}
	blob.invalidate()
	return nil
}

// ScaleCoordinates resamples lines by scale; rows that collapse onto each other are fused.
// Pixel data no longer matches the geometry and is dropped.
func (blob *Blob) ScaleCoordinates(scale Point) error {
	if scale.X <= 0 || scale.Y <= 0 {
		return errors.Errorf("Can't scale %s by non-positive %v", blob.blobID, scale)
	}
	for i, line := range blob.lines {
		y := math.Floor(float64(line.Y) * scale.Y)
		x0 := math.Floor(float64(line.X0) * scale.X)
		x1 := math.Floor(float64(line.X1+1)*scale.X) - 1
		x1 = maxFloat64(x0, x1)
		if y > math.MaxUint16 || x1 > math.MaxUint16 {
			return errors.Wrapf(ErrCoordinateRange, "Can't scale %s of %s by %v", line, blob.blobID, scale)
		}
		blob.lines[i] = HorizontalLine{Y: uint16(y), X0: uint16(x0), X1: uint16(x1)}
	}
	blob.lines, _ = RepairLines(blob.lines, nil, 0)
	blob.pixels = nil
	blob.invalidate()
	return nil
}

func (blob *Blob) invalidate() {
	blob.properties.ready = false
	blob.moments.ready = false
	blob.recountReady = false
}

// Clone returns a deep copy with caches dropped
func (blob *Blob) Clone() *Blob {
	clone := *blob
	clone.lines = append(GetLineBuffer(len(blob.lines)), blob.lines...)
	if blob.pixels != nil {
		clone.pixels = append([]byte(nil), blob.pixels...)
	}
	clone.prediction = blob.prediction.Clone()
	clone.invalidate()
	return &clone
}

// Release hands the line buffer back to the shared pool. The blob is empty afterwards.
func (blob *Blob) Release() {
	putLineBuffer(blob.lines, blob.opts.PoolCapacity)
	blob.lines = nil
	blob.pixels = nil
	blob.invalidate()
}

// Equal reports whether both blobs cover the same lines with the same pixels and flags
func (blob *Blob) Equal(other *Blob) bool {
	if blob == other {
		return true
	}
	if other == nil || blob.flags != other.flags || blob.parentID != other.parentID {
		return false
	}
	if len(blob.lines) != len(other.lines) || len(blob.pixels) != len(other.pixels) {
		return false
	}
	for i := range blob.lines {
		if blob.lines[i] != other.lines[i] {
			return false
		}
	}
	for i := range blob.pixels {
		if blob.pixels[i] != other.pixels[i] {
			return false
		}
	}
	return true
}

// MemorySize estimates bytes held by the blob
func (blob *Blob) MemorySize() uint64 {
	size := uint64(unsafe.Sizeof(*blob))
	size += uint64(cap(blob.lines)) * uint64(unsafe.Sizeof(HorizontalLine{}))
	size += uint64(cap(blob.pixels))
	size += uint64(len(blob.prediction.Pose)) * uint64(unsafe.Sizeof(Point{}))
	return size
}

// Name returns a short human readable label
func (blob *Blob) Name() string {
	pos := blob.GetCenter()
	return fmt.Sprintf("blob<%d,%d>", int(pos.X), int(pos.Y))
}

func (blob *Blob) String() string {
	return fmt.Sprintf("%s %s lines=%d pixels=%d flags=%s parent=%s",
		blob.Name(), blob.blobID, len(blob.lines), blob.GetNumPixels(), blob.flags, blob.parentID)
}
