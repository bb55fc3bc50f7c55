package mask

// MaxHistory bounds the undo window, the blank snapshot included.
const MaxHistory = 20

// history keeps full-buffer captures; once over the limit the oldest are dropped.
type history struct {
	entries [][]byte
	limit   int
}

func newHistory(limit int) *history {
	if limit < 1 {
		limit = 1
	}
	return &history{limit: limit}
}

func (h *history) push(pix []byte) {
	snap := make([]byte, len(pix))
	copy(snap, pix)
	h.entries = append(h.entries, snap)
	if over := len(h.entries) - h.limit; over > 0 {
		for i := 0; i < over; i++ {
			h.entries[i] = nil
		}
		h.entries = h.entries[over:]
	}
}

// pop drops the newest entry unless it is the only one left.
func (h *history) pop() bool {
	if len(h.entries) < 2 {
		return false
	}
	h.entries[len(h.entries)-1] = nil
	h.entries = h.entries[:len(h.entries)-1]
	return true
}

func (h *history) newest() []byte {
	if len(h.entries) == 0 {
		return nil
	}
	return h.entries[len(h.entries)-1]
}

func (h *history) reset(pix []byte) {
	h.entries = nil
	h.push(pix)
}

func (h *history) len() int {
	return len(h.entries)
}
