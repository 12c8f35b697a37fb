package stock

import (
	"sync"

	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
)

type Alert struct {
	Material materials.Material
	Empty    bool
}

// LowStockTracker reports each material once when it drops to zero or
// below the threshold, and again only after it has recovered.
type LowStockTracker struct {
	threshold int64

	mu     sync.Mutex
	seeded bool
	low    map[id.ID]bool
}

func NewLowStockTracker(threshold int64) *LowStockTracker {
	return &LowStockTracker{threshold: threshold, low: make(map[id.ID]bool)}
}

func (t *LowStockTracker) isLow(m materials.Material) bool {
	return m.Quantity <= 0 || m.Quantity < t.threshold
}

// Check returns the materials that newly crossed the threshold. The first
// call only records the current state.
func (t *LowStockTracker) Check(ms []materials.Material) []Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	var alerts []Alert
	current := make(map[id.ID]bool, len(ms))
	for _, m := range ms {
		if !t.isLow(m) {
			continue
		}
		current[m.ID] = true
		if t.seeded && !t.low[m.ID] {
			alerts = append(alerts, Alert{Material: m, Empty: m.Quantity <= 0})
		}
	}
	t.low = current
	t.seeded = true
	return alerts
}
