package cachefan

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The invalidator and dispatcher call them on hot paths.
type Hooks interface {
	// The store was not ready and an operation degraded to a no-op.
	StoreNotReady(op string)

	// A scan-delete failed mid-cursor and the remaining batches for the
	// pattern were abandoned. deleted is how many keys went before the error.
	ScanAbandoned(pattern string, deleted int, err error)

	// A send over a live connection handle failed (stale/slow client).
	LiveSendFailed(recipient string, err error)

	// The external push call failed for one endpoint.
	PushSendFailed(recipient string, err error)

	// The subscription source could not enumerate endpoints for a recipient.
	PushSourceError(recipient string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StoreNotReady(string)             {}
func (NopHooks) ScanAbandoned(string, int, error) {}
func (NopHooks) LiveSendFailed(string, error)     {}
func (NopHooks) PushSendFailed(string, error)     {}
func (NopHooks) PushSourceError(string, error)    {}
