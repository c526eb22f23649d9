package game

// maxPopups caps the messages stacked on screen at once.
const maxPopups = 4

// Popup is one on-screen message.
type Popup struct {
	Message string
	Start   int64
}

// Popups is a short queue of messages that each stay visible for a fixed
// number of frames.
type Popups struct {
	items    []Popup
	duration int64
}

// NewPopups creates a queue whose messages last duration frames.
func NewPopups(duration int64) *Popups {
	if duration <= 0 {
		duration = 180
	}
	return &Popups{duration: duration}
}

// Push shows msg from frame now. The oldest message is dropped when full.
func (p *Popups) Push(msg string, now int64) {
	if len(p.items) == maxPopups {
		copy(p.items, p.items[1:])
		p.items = p.items[:maxPopups-1]
	}
	p.items = append(p.items, Popup{Message: msg, Start: now})
}

// Active drops expired messages and returns the rest, oldest first.
func (p *Popups) Active(now int64) []Popup {
	alive := p.items[:0]
	for _, it := range p.items {
		if now-it.Start < p.duration {
			alive = append(alive, it)
		}
	}
	p.items = alive
	return p.items
}

// Fade returns the opacity of a message at frame now: full for most of its
// life, easing out over the last quarter.
func (p *Popups) Fade(it Popup, now int64) float32 {
	left := p.duration - (now - it.Start)
	tail := p.duration / 4
	if tail <= 0 || left >= tail {
		return 1
	}
	if left <= 0 {
		return 0
	}
	return float32(left) / float32(tail)
}
