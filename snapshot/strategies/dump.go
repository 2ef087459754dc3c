package strategies

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
)

// dumpConfig renders any value as a stable, recursive description.
// Map keys (including struct keys used as sets) are sorted by their printed form and
// pointer addresses and slice capacities are left out, so repeated dumps are byte-identical.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump snapshots any value as a recursive, type-annotated description.
var Dump = snapshot.Strategy[any]{
	Name:          "dump",
	PathExtension: textExtension,
	Kind:          snapshot.KindText,
	Snapshot: snapshot.Sync(func(subject any) (snapshot.Format, error) {
		return snapshot.TextFormat(dumpConfig.Sdump(subject), textExtension), nil
	}),
	Diff: diffing.Lines,
}
