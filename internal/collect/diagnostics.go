// Package collect builds package inventories from a project's lockfile and
// its installed node_modules tree. Collectors never fail: anything they
// cannot read contributes nothing and is reported to an optional
// Diagnostics hook.
package collect

import "fmt"

// Source names a collector.
type Source string

const (
	SourceLockfile    Source = "lockfile"
	SourceNodeModules Source = "node_modules"
)

// Reason classifies a degraded read.
type Reason string

const (
	ReasonMissing      Reason = "missing"
	ReasonUnreadable   Reason = "unreadable"
	ReasonCorrupt      Reason = "corrupt"
	ReasonIncomplete   Reason = "incomplete"
	ReasonNameMismatch Reason = "name-mismatch"
	ReasonDepthLimit   Reason = "depth-limit"
)

// Degraded describes one input that contributed nothing, or something
// other than expected, to an inventory.
type Degraded struct {
	Source Source
	Path   string
	Reason Reason
	Err    error
}

func (d Degraded) String() string {
	if d.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", d.Source, d.Path, d.Reason, d.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Source, d.Path, d.Reason)
}

// Diagnostics receives degraded reads. It may be called from several
// collectors at once.
type Diagnostics func(Degraded)

func (fn Diagnostics) report(d Degraded) {
	if fn != nil {
		fn(d)
	}
}
