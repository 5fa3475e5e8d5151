package domain

// SegmentRole tags a prompt segment with the chat role it is sent under.
type SegmentRole string

const (
	// SegmentSystem carries the fixed assistant policy.
	SegmentSystem SegmentRole = "system"
	// SegmentUser carries interpolated context and the question.
	SegmentUser SegmentRole = "user"
	// SegmentAssistant carries prior model output.
	SegmentAssistant SegmentRole = "assistant"
)

// Segment is one role-tagged block of prompt text.
type Segment struct {
	Role SegmentRole
	Text string
}

// Prompt is an immutable, ordered sequence of role-tagged segments.
// Building prompts by segment composition instead of ad hoc string
// concatenation keeps the interpolation surface explicit.
type Prompt struct {
	segments []Segment
}

// NewPrompt creates a prompt from segments in order.
func NewPrompt(segments ...Segment) Prompt {
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	return Prompt{segments: cp}
}

// Segments returns a copy of the ordered segments.
func (p Prompt) Segments() []Segment {
	cp := make([]Segment, len(p.segments))
	copy(cp, p.segments)
	return cp
}

// IsEmpty reports whether the prompt has no segments.
func (p Prompt) IsEmpty() bool { return len(p.segments) == 0 }
