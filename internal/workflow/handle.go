package workflow

import "context"

// requestHandle tracks the single outstanding call of a workflow. Every
// call gets its own cancellable context and a generation number; a result
// whose generation is no longer current is discarded.
//
// It is not safe for concurrent use; callers hold their workflow mutex.
type requestHandle struct {
	generation uint64
	cancel     context.CancelFunc
}

// begin starts a call derived from ctx.
func (h *requestHandle) begin(ctx context.Context) (context.Context, uint64) {
	h.generation++
	callCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	return callCtx, h.generation
}

func (h *requestHandle) busy() bool {
	return h.cancel != nil
}

func (h *requestHandle) current(gen uint64) bool {
	return gen == h.generation
}

// finish releases the call context and reports whether the call still
// belongs to the current generation.
func (h *requestHandle) finish(gen uint64) bool {
	if !h.current(gen) {
		return false
	}
	h.release()
	return true
}

// abort cancels the outstanding call, if any, and makes its result stale.
func (h *requestHandle) abort() {
	h.release()
	h.generation++
}

func (h *requestHandle) release() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}
