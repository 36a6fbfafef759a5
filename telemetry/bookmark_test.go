package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FallingBehind(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if hasBookmark(bd.Check(WindowStats{WindowEndStep: 300, Steps: 300}), BookmarkFallingBehind) {
		t.Error("no dropped steps should not trigger falling_behind")
	}
	bookmarks := bd.Check(WindowStats{WindowEndStep: 600, Steps: 280, DroppedSteps: 20})
	if !hasBookmark(bookmarks, BookmarkFallingBehind) {
		t.Error("expected falling_behind bookmark")
	}
}

func TestBookmarkDetector_ResidualSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Build up history with small residuals
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndStep:  int32(i * 300),
			DistanceErrMax: 0.002,
		})
	}

	bookmarks := bd.Check(WindowStats{WindowEndStep: 1500, DistanceErrMax: 0.01})
	if !hasBookmark(bookmarks, BookmarkResidualSpike) {
		t.Error("expected residual_spike bookmark")
	}
}

func TestBookmarkDetector_ResidualSpikeIgnoresNoise(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndStep: int32(i * 300), DistanceErrMax: 1e-6})
	}

	// 10x the average but still below the noise floor
	bookmarks := bd.Check(WindowStats{WindowEndStep: 1500, DistanceErrMax: 1e-5})
	if hasBookmark(bookmarks, BookmarkResidualSpike) {
		t.Error("tiny residuals should not trigger residual_spike")
	}
}

func TestBookmarkDetector_FloorImpactOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEndStep: 300})
	if !hasBookmark(bd.Check(WindowStats{WindowEndStep: 600, FloorContacts: 12}), BookmarkFloorImpact) {
		t.Error("expected floor_impact bookmark on first contact")
	}
	if hasBookmark(bd.Check(WindowStats{WindowEndStep: 900, FloorContacts: 40}), BookmarkFloorImpact) {
		t.Error("floor_impact should trigger only once")
	}
}

func TestBookmarkDetector_Settled(t *testing.T) {
	bd := NewBookmarkDetector(10)

	triggered := 0
	for i := 0; i < 10; i++ {
		bookmarks := bd.Check(WindowStats{
			WindowEndStep: int32(i * 300),
			Particles:     100,
			SpeedP90:      0.01,
		})
		if hasBookmark(bookmarks, BookmarkSettled) {
			triggered++
			if i != settledWindows-1 {
				t.Errorf("settled triggered at window %d, want %d", i, settledWindows-1)
			}
		}
	}
	if triggered != 1 {
		t.Errorf("settled triggered %d times, want 1", triggered)
	}

	// Motion resets the count
	bd.Check(WindowStats{Particles: 100, SpeedP90: 2})
	for i := 0; i < settledWindows-1; i++ {
		if hasBookmark(bd.Check(WindowStats{Particles: 100, SpeedP90: 0.01}), BookmarkSettled) {
			t.Fatal("settled should need a fresh run of quiet windows")
		}
	}
	if !hasBookmark(bd.Check(WindowStats{Particles: 100, SpeedP90: 0.01}), BookmarkSettled) {
		t.Error("expected settled after a fresh run of quiet windows")
	}
}
