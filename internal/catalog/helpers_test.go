package catalog

import (
	"time"

	"github.com/dshills/posengine/internal/numbering"
)

func dayOf(t time.Time) numbering.Window {
	return numbering.DayWindow(t, 0, time.UTC)
}
