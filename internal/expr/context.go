package expr

import (
	"time"

	"github.com/sage-ingest/sage/internal/table"
)

// Context carries everything an evaluation needs beyond the AST itself: the
// table the expression is scoped to, the full package table.Set for
// df['logical']['column'] lookups, and a reference time for date math.
type Context struct {
	// Primary is the table the current field/row/catalog rule is scoped to.
	Primary *table.Table
	// Tables is the full set of decoded catalogs for the enclosing package,
	// keyed by logical name, used by FrameColumnExpr and cross-rules.
	Tables table.Set
	// ReferenceTime anchors relative date comparisons (e.g. "today"); it is
	// the run's start time, not time.Now(), so a run's findings are
	// reproducible (spec.md §9 design notes).
	ReferenceTime time.Time
}
