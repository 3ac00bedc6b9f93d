package chat

// DefaultFollowThreshold is how many lines from the bottom still count as
// being at the bottom.
const DefaultFollowThreshold = 2

// Follow tracks the chat viewport as an offset in lines from the newest
// message. While the user is near the bottom, new messages keep the view
// pinned there; once they scroll away, the view stays where they left it.
type Follow struct {
	Threshold int
	offset    int
}

func NewFollow() *Follow {
	return &Follow{Threshold: DefaultFollowThreshold}
}

// Offset is the number of lines between the bottom of the view and the
// newest line.
func (f *Follow) Offset() int { return f.offset }

// Following reports whether new messages will auto-scroll the view.
func (f *Follow) Following() bool { return f.offset <= f.Threshold }

// Scroll moves the view up (positive delta) or down, clamped to
// [0, maxOffset].
func (f *Follow) Scroll(delta, maxOffset int) {
	f.offset += delta
	if f.offset > maxOffset {
		f.offset = maxOffset
	}
	if f.offset < 0 {
		f.offset = 0
	}
}

// Bottom jumps back to the newest message.
func (f *Follow) Bottom() { f.offset = 0 }

// Appended records that lines new lines arrived at the bottom.
func (f *Follow) Appended(lines int) {
	if f.Following() {
		f.offset = 0
		return
	}
	f.offset += lines
}
