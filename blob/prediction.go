package blob

// NoClass is the class id stored for a missing prediction
const NoClass = 255

// Prediction is a detector's guess about what a blob is
type Prediction struct {
	ClassID     uint8
	Probability uint8
	Pose        []Point
	valid       bool
}

// NewPrediction creates valid prediction. Probability is clamped to [0, 1]
func NewPrediction(classID uint8, probability float64, pose ...Point) Prediction {
	return Prediction{
		ClassID:     classID,
		Probability: saturate(probability * 255.0),
		Pose:        pose,
		valid:       classID != NoClass,
	}
}

// Valid reports whether prediction carries a class
func (p Prediction) Valid() bool {
	return p.valid
}

// P returns probability in [0, 1]
func (p Prediction) P() float64 {
	return float64(p.Probability) / 255.0
}

// Clone returns a deep copy
func (p Prediction) Clone() Prediction {
	if p.Pose != nil {
		p.Pose = append([]Point(nil), p.Pose...)
	}
	return p
}

func (p Prediction) classByte() uint8 {
	if !p.valid {
		return NoClass
	}
	return p.ClassID
}
