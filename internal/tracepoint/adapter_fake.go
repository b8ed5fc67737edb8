package tracepoint

import "sync"

// Fake is an in-memory rtsl.ProbeRegistry used by tests: RegisterProbe and
// UnregisterProbe just track probe names, and Inject drives the same
// dispatch switch the real linux Adapter's ring buffer reader uses, so a
// test can exercise the registry/dispatch boundary without a kernel.
type Fake struct {
	ctrl controller

	mu         sync.Mutex
	registered map[string]bool
}

func NewFake(ctrl controller) *Fake {
	return &Fake{ctrl: ctrl, registered: make(map[string]bool)}
}

func (f *Fake) RegisterProbe(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered[name] = true
	return nil
}

func (f *Fake) UnregisterProbe(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registered, name)
}

func (f *Fake) Registered(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered[name]
}

// Inject feeds one decoded event through the same dispatch path a real
// tracepoint read would.
func (f *Fake) Inject(e rtslEvent) {
	dispatch(f.ctrl, e)
}
