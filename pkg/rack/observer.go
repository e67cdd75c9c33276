package rack

// Observer receives adapter events, typically to record metrics.
type Observer interface {
	// BodyWrapped is called with the resolved body kind of every response.
	BodyWrapped(kind string)

	// HopHeadersStripped is called with the names of removed hop headers.
	HopHeadersStripped(names []string)

	// ResponseAssembled is called with the final status of every response.
	ResponseAssembled(status int)

	// ApplicationFailed is called when a 500 is synthesised. reason is the
	// error name, e.g. "ArgumentError".
	ApplicationFailed(reason string)

	// CallbacksFired is called when the completion registry fires.
	CallbacksFired(total, failed int)
}

type nopObserver struct{}

func (nopObserver) BodyWrapped(string)          {}
func (nopObserver) HopHeadersStripped([]string) {}
func (nopObserver) ResponseAssembled(int)       {}
func (nopObserver) ApplicationFailed(string)    {}
func (nopObserver) CallbacksFired(int, int)     {}
