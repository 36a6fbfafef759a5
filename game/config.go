package game

// Window title shown in the HUD and title bar.
const Title = "Softbody Sandbox"

// controlsLegend is drawn along the bottom edge of the viewer.
const controlsLegend = "[Space] pause  [N] step  [R] reset  [Tab] controls  " +
	"[MMB drag] orbit  [Arrows] pan  [Wheel] zoom  [Home] camera  " +
	"[Shift+LMB] drag picker  [LMB] inspect"

// Camera input rates.
const (
	orbitSensitivity = 0.005 // radians per pixel of mouse drag
	panSpeed         = 0.02  // fraction of orbit distance per frame
	zoomStep         = 0.1   // distance change per wheel notch
)

// Wind arrows are drawn this far above the floor.
const windArrowLift = 6.0

// Options configures a Game instance.
type Options struct {
	Headless    bool    // no window, no rendering
	LogStats    bool    // log telemetry windows and bookmarks through slog
	StatsWindow float64 // seconds per telemetry window; 0 uses config
	OutputDir   string  // CSV output directory; empty disables file output
}
