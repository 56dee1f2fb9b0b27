package capture

// frameQueueCapacity is the bounded, drop-oldest frame queue depth
// every producer uses (§4.D: "bounded queues, max 2-3 buffers, oldest
// dropped on backpressure").
const frameQueueCapacity = 3

// pushDropOldest sends frame on ch without blocking. If ch is full, the
// oldest queued frame is discarded to make room — single-producer,
// single-consumer, so this is safe without additional locking as long
// as only the owning goroutine calls it (§7 ordering guarantees).
func pushDropOldest(ch chan Frame, frame Frame) {
	select {
	case ch <- frame:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- frame:
	default:
	}
}
