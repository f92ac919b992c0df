package blob

import "github.com/pkg/errors"

var (
	// ErrPixelsMissing is returned when an operation needs pixel data the blob does not carry
	ErrPixelsMissing = errors.New("blob has no pixel data")
	// ErrChannelMismatch is returned when pixel buffer length is not num_pixels*channels
	ErrChannelMismatch = errors.New("pixel buffer does not match lines and channel count")
	// ErrRecountNotReady is returned when recount is queried with threshold -1 before any computation
	ErrRecountNotReady = errors.New("recount has not been computed yet")
	// ErrRecountThreshold is returned when cached recount is read for another threshold
	ErrRecountThreshold = errors.New("recount was computed for a different threshold")
	ErrZeroCalibration  = errors.New("calibration factor is zero")
	ErrCoordinateRange  = errors.New("coordinate does not fit into packed line")
	ErrRowGap           = errors.New("packed lines need consecutive rows")
	ErrShortBuffer      = errors.New("buffer too short for compressed blob")
)
