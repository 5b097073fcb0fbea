package proxygen

import "sync"

//  ██╗  ██╗███████╗ █████╗ ██╗  ████████╗██╗  ██╗
//  ██║  ██║██╔════╝██╔══██╗██║  ╚══██╔══╝██║  ██║
//  ███████║█████╗  ███████║██║     ██║   ███████║
//  ██╔══██║██╔══╝  ██╔══██║██║     ██║   ██╔══██║
//  ██║  ██║███████╗██║  ██║███████╗██║   ██║  ██║
//  ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚══════╝╚═╝   ╚═╝  ╚═╝
//

const healthWindow = 5

// relayHealth tracks the last few verification outcomes attributed to the
// engine's current last-known-good relay, the same sliding-window shape
// that previously disabled an exhausted balancer server; here it retires
// a feedback relay that has stopped producing verifiable proxies.
type relayHealth struct {
	mu     sync.Mutex
	window [healthWindow]bool
	idx    int
	filled int
}

func newRelayHealth() *relayHealth {
	return &relayHealth{}
}

// record notes one verification outcome. It returns true once the window
// is full and every recorded outcome was a failure.
func (h *relayHealth) record(ok bool) (exhausted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.window[h.idx] = ok
	h.idx = (h.idx + 1) % healthWindow
	if h.filled < healthWindow {
		h.filled++
	}

	if h.filled < healthWindow {
		return false
	}
	for _, v := range h.window {
		if v {
			return false
		}
	}
	return true
}

// reset clears the window, used whenever the last-known-good relay changes.
func (h *relayHealth) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.window = [healthWindow]bool{}
	h.idx = 0
	h.filled = 0
}
