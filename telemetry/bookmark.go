package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFallingBehind BookmarkType = "falling_behind"
	BookmarkResidualSpike BookmarkType = "residual_spike"
	BookmarkFloorImpact   BookmarkType = "floor_impact"
	BookmarkSettled       BookmarkType = "settled"
)

// Thresholds used by the detector.
const (
	residualSpikeFloor = 1e-3 // ignore spikes smaller than this
	settledSpeed       = 0.05 // p90 particle speed below which a scene counts as at rest
	settledWindows     = 5
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Step        int32        `csv:"step"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"step", b.Step,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	touchedFloor        bool
	settledWindowsCount int // consecutive windows below settledSpeed
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for a meaningful rolling average
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFallingBehind(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkResidualSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFloorImpact(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFallingBehind(stats WindowStats) *Bookmark {
	if stats.DroppedSteps == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFallingBehind,
		Step:        stats.WindowEndStep,
		Description: fmt.Sprintf("Dropped %d steps after running %d", stats.DroppedSteps, stats.Steps),
	}
}

func (bd *BookmarkDetector) checkResidualSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DistanceErrMax
	}
	avg := total / float64(len(history))

	if stats.DistanceErrMax > residualSpikeFloor && stats.DistanceErrMax > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkResidualSpike,
			Step:        stats.WindowEndStep,
			Description: fmt.Sprintf("Max edge error %.4f vs rolling average %.4f", stats.DistanceErrMax, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFloorImpact(stats WindowStats) *Bookmark {
	if bd.touchedFloor || stats.FloorContacts == 0 {
		return nil
	}
	bd.touchedFloor = true
	return &Bookmark{
		Type:        BookmarkFloorImpact,
		Step:        stats.WindowEndStep,
		Description: fmt.Sprintf("First floor contact (%d clamps this window)", stats.FloorContacts),
	}
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Particles == 0 || stats.SpeedP90 >= settledSpeed {
		bd.settledWindowsCount = 0
		return nil
	}

	bd.settledWindowsCount++
	if bd.settledWindowsCount == settledWindows { // trigger exactly once per rest period
		return &Bookmark{
			Type:        BookmarkSettled,
			Step:        stats.WindowEndStep,
			Description: fmt.Sprintf("Scene at rest for %d windows (p90 speed %.4f)", settledWindows, stats.SpeedP90),
		}
	}
	return nil
}
