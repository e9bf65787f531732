package driven

import (
	"io"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// VsyncDispatch fires registered callbacks near anticipated vsync times.
//
// Callbacks are delivered on the dispatch's own goroutine. A registration is
// never re-entered: its callback does not run concurrently with itself.
type VsyncDispatch interface {
	// Register adds a named callback and returns its token.
	Register(name string, callback domain.VsyncCallback) (domain.CallbackToken, error)

	// Unregister cancels any pending firing and detaches the callback.
	// No firing happens after Unregister returns.
	Unregister(token domain.CallbackToken)

	// Schedule arms the next firing of token and returns its wakeup time.
	Schedule(token domain.CallbackToken, timing domain.ScheduleTiming) (domain.TimePoint, error)

	// Cancel disarms a pending firing.
	Cancel(token domain.CallbackToken) domain.CancelResult

	// Dump writes diagnostics.
	Dump(w io.Writer)
}
