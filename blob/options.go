package blob

// Options holds the settings a blob reads while computing.
// The zero value is usable once EnsureDefaults has been called.
type Options struct {
	// CMPerPixel converts pixel counts to square centimeters in Recount.
	// It is not defaulted: zero makes Recount fail.
	CMPerPixel float64

	// CorrectIllegalLines repairs unsorted or overlapping input lines in place.
	// When false such input is kept and reported once through Logger.
	CorrectIllegalLines bool

	// MomentWorkers bounds the number of goroutines used for moments.
	MomentWorkers int

	// MomentChunkLines is how many lines one moment chunk gets before
	// the line list is split further (at most maxMomentChunks chunks).
	MomentChunkLines int

	// PoolCapacity bounds the shared free list of line buffers.
	PoolCapacity int

	Logger Logger
}

const (
	defaultMomentWorkers    = 8
	defaultMomentChunkLines = 1000
	defaultPoolCapacity     = 5000
	maxMomentChunks         = 4
)

// EnsureDefaults fills zero fields with defaults and returns the receiver
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.MomentWorkers <= 0 {
		o.MomentWorkers = defaultMomentWorkers
	}
	if o.MomentChunkLines <= 0 {
		o.MomentChunkLines = defaultMomentChunkLines
	}
	if o.PoolCapacity <= 0 {
		o.PoolCapacity = defaultPoolCapacity
	}
	if o.Logger == nil {
		o.Logger = DefaultLogger{}
	}
	return o
}

var defaultOptions = (&Options{CMPerPixel: 1}).EnsureDefaults()

// DefaultOptions returns a copy of the options used by blobs created without WithOptions
func DefaultOptions() Options {
	return *defaultOptions
}

// Option configures a blob at construction time
type Option func(blob *Blob)

// WithOptions makes the blob use opts (defaults filled in) instead of the process defaults
func WithOptions(opts Options) Option {
	return func(blob *Blob) {
		blob.opts = (&opts).EnsureDefaults()
	}
}

// WithPrediction attaches a class prediction
func WithPrediction(prediction Prediction) Option {
	return func(blob *Blob) {
		blob.prediction = prediction
	}
}

// WithParentID marks the blob as split off from parent
func WithParentID(parent BlobID) Option {
	return func(blob *Blob) {
		blob.SetParentID(parent)
	}
}
