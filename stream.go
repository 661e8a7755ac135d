package phris

import (
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// streamHub fans processed JPEG frames out to connected MJPEG clients.
// Slow clients skip frames rather than stall the pipeline
type streamHub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func newStreamHub() *streamHub {
	return &streamHub{
		subs: make(map[chan []byte]struct{}),
	}
}

// subscribe registers a client channel
func (h *streamHub) subscribe() chan []byte {
	ch := make(chan []byte, 1)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.subs[ch] = struct{}{}
	return ch
}

// unsubscribe removes a client channel
func (h *streamHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, ch)
}

// publish delivers a frame to every subscriber, dropping the previous
// frame for clients that have not consumed it yet
func (h *streamHub) publish(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- frame:
		default:
			// drain the stale frame and replace it
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- frame:
			default:
			}
		}
	}
}

// clients returns the number of connected stream clients
func (h *streamHub) clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// StreamHandler returns the HTTP handler streaming annotated video as
// multipart MJPEG
func (p *Pipeline) StreamHandler() http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		p.log.Info("stream client connected",
			zap.String("remote", r.RemoteAddr))

		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

		ch := p.hub.subscribe()
		defer p.hub.unsubscribe(ch)

		flusher, canFlush := w.(http.Flusher)

		for {
			select {
			case <-r.Context().Done():
				p.log.Info("stream client disconnected",
					zap.String("remote", r.RemoteAddr))
				return

			case frame := <-ch:

				if _, err := w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
					return
				}

				if _, err := w.Write(frame); err != nil {
					return
				}

				if _, err := w.Write([]byte("\r\n")); err != nil {
					return
				}

				if canFlush {
					flusher.Flush()
				}
			}
		}
	}
}
