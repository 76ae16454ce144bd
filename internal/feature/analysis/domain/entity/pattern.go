package entity

// PatternClass is one of the seven chart-pattern labels produced by the classifier.
// The numeric order matches the classifier's output vector.
type PatternClass int

const (
	BearishFlag PatternClass = iota
	BullishFlag
	DoubleBottom
	DoubleTop
	HeadShoulders
	InverseHeadShoulders
	Noise
)

// PatternClassCount is the length of the classifier's probability vector.
const PatternClassCount = 7

// NoPatternLabel is reported whenever no actionable pattern was found.
const NoPatternLabel = "N/A"

var patternLabels = [PatternClassCount]string{
	"Bearish Flag",
	"Bullish Flag",
	"Double Bottom",
	"Double Top",
	"Head & Shoulders",
	"Inverted Head & Shoulders",
	"Noise",
}

// PatternClassNames lists the class identifiers in classifier output order.
var PatternClassNames = [PatternClassCount]string{
	"BearishFlag",
	"BullishFlag",
	"DoubleBottom",
	"DoubleTop",
	"HeadShoulders",
	"InverseHeadShoulders",
	"Noise",
}

// Valid reports whether c is inside the classifier label set.
func (c PatternClass) Valid() bool {
	return c >= BearishFlag && c <= Noise
}

// Label returns the human-readable name shown to users.
func (c PatternClass) Label() string {
	if !c.Valid() {
		return NoPatternLabel
	}
	return patternLabels[c]
}

// Bias maps the class to +1 (bullish), -1 (bearish) or 0 (noise).
func (c PatternClass) Bias() int {
	switch c {
	case BullishFlag, DoubleBottom, InverseHeadShoulders:
		return 1
	case BearishFlag, DoubleTop, HeadShoulders:
		return -1
	default:
		return 0
	}
}

// PatternResult is the outcome of scanning one price window.
type PatternResult struct {
	Signal     int     // +1 bullish, -1 bearish, 0 none
	Label      string  // Human-readable pattern name or "N/A"
	Confidence float64 // Classifier probability of the predicted class, 0 when not classified
}

// NoPattern is the neutral result used when nothing could be classified.
func NoPattern() PatternResult {
	return PatternResult{Signal: 0, Label: NoPatternLabel, Confidence: 0}
}

// ChartImage is a rendered price window written to a request-scoped directory.
type ChartImage struct {
	Path   string // PNG file on disk
	Width  int
	Height int
}
