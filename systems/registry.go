package systems

// Phase IDs reported to a PhaseRecorder. They double as perf column keys.
const (
	PhaseInput    = "input"
	PhasePicker   = "picker"
	PhasePredict  = "predict"
	PhaseBind     = "bind"
	PhaseSolve    = "solve"
	PhaseCollide  = "collide"
	PhaseFinalize = "finalize"
	PhaseRender   = "render"
)

// SystemInfo describes a simulation phase for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
	Category    string // Grouping (e.g., "solver", "frame")
}

// SystemRegistry holds metadata about all phases.
// This centralizes naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known phases.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known phases in execution order.
// Update this when adding new phases.
func (r *SystemRegistry) registerDefaults() {
	// Per-frame work outside the solver
	r.Register(SystemInfo{ID: PhaseInput, Name: "Input", Description: "Camera and keyboard handling", Category: "frame"})
	r.Register(SystemInfo{ID: PhasePicker, Name: "Picker", Description: "Moves the mouse picker particle", Category: "frame"})

	// Fixed-step solver
	r.Register(SystemInfo{ID: PhasePredict, Name: "Predict", Description: "Integrates gravity and wind", Category: "solver"})
	r.Register(SystemInfo{ID: PhaseBind, Name: "Bind", Description: "Resolves constraint handles, resets multipliers", Category: "solver"})
	r.Register(SystemInfo{ID: PhaseSolve, Name: "Solve", Description: "Projects distance and volume constraints", Category: "solver"})
	r.Register(SystemInfo{ID: PhaseCollide, Name: "Collide", Description: "Clamps particles above the floor", Category: "solver"})
	r.Register(SystemInfo{ID: PhaseFinalize, Name: "Finalize", Description: "Derives velocities and writes positions", Category: "solver"})

	// Visual
	r.Register(SystemInfo{ID: PhaseRender, Name: "Render", Description: "Draws particles and constraints", Category: "frame"})
}

// Register adds a phase to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns phases filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// IDs returns all phase IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
