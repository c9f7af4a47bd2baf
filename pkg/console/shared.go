// ABOUTME: Optional process-wide Console for code that cannot pass one around.
// ABOUTME: Built lazily on first use; CloseShared is the exit hook main should defer.

package console

import "sync"

var (
	sharedMu sync.Mutex
	shared   *Console
)

// Shared returns the process-wide Console, creating it with factory on the
// first call. Later calls ignore factory.
func Shared(factory func() *Console) *Console {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		shared = factory()
	}
	return shared
}

// CloseShared closes and forgets the process-wide Console, if any.
func CloseShared() error {
	sharedMu.Lock()
	c := shared
	shared = nil
	sharedMu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}
