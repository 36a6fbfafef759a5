package scene

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/components"
	"github.com/pthm-cable/softbody/config"
	"github.com/pthm-cable/softbody/systems"
)

// Rod is a chain of particles joined by distance constraints, pinned at the start.
type Rod struct {
	Body      ecs.Entity
	Particles []ecs.Entity
}

// Cloth is a rectangular particle grid hung from two static anchors.
type Cloth struct {
	Body          ecs.Entity
	Anchors       [2]ecs.Entity // top-left, top-right
	Particles     []ecs.Entity  // row-major, row 0 at origin.Y
	Width, Height int
}

// At returns the cloth particle at column i, row j.
func (c Cloth) At(i, j int) ecs.Entity {
	return c.Particles[j*c.Width+i]
}

// SoftBody is a tetrahedral mesh with edge and volume constraints.
type SoftBody struct {
	Body      ecs.Entity
	Particles []ecs.Entity
}

// Built records everything BuildFromConfig created.
type Built struct {
	Rod     *Rod
	Cloth   *Cloth
	SoftBox *SoftBody
	Picker  ecs.Entity // zero when the picker is disabled
}

// BuildRod creates segments+1 particles evenly spaced from start to end.
// The first particle is static; every link has the same rest length.
func (s *Scene) BuildRod(name string, start, end r3.Vec, segments int, compliance float64) Rod {
	if segments < 1 {
		segments = 1
	}
	rod := Rod{Particles: make([]ecs.Entity, 0, segments+1)}
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		pos := r3.Add(start, r3.Scale(t, r3.Sub(end, start)))
		invMass := 1.0
		if i == 0 {
			invMass = 0
		}
		rod.Particles = append(rod.Particles, s.CreateParticle(pos, invMass))
	}

	rest := r3.Norm(r3.Sub(end, start)) / float64(segments)
	var body components.DeformableBody
	for i := 0; i < segments; i++ {
		body.DistanceConstraints = append(body.DistanceConstraints,
			components.NewDistanceConstraint(rod.Particles[i], rod.Particles[i+1], rest, compliance))
	}
	rod.Body = s.AddBody(name, body)
	return rod
}

// BuildCloth creates a width x height grid in the XY plane starting at origin.
// All grid particles are dynamic; the top corners are welded to static anchors
// with zero-length constraints, followed by horizontal and vertical structural links.
func (s *Scene) BuildCloth(name string, origin r3.Vec, width, height int, spacing, compliance, weldCompliance float64) Cloth {
	cloth := Cloth{Width: width, Height: height}
	if width < 1 || height < 1 {
		slog.Warn("cloth too small, skipping", "name", name, "width", width, "height", height)
		return cloth
	}

	top := float64(height-1) * spacing
	cloth.Anchors[0] = s.CreateParticle(r3.Add(origin, r3.Vec{Y: top}), 0)
	cloth.Anchors[1] = s.CreateParticle(r3.Add(origin, r3.Vec{X: float64(width-1) * spacing, Y: top}), 0)

	cloth.Particles = make([]ecs.Entity, width*height)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			pos := r3.Add(origin, r3.Vec{X: float64(i) * spacing, Y: float64(j) * spacing})
			cloth.Particles[j*width+i] = s.CreateParticle(pos, 1)
		}
	}

	var body components.DeformableBody
	body.DistanceConstraints = append(body.DistanceConstraints,
		components.NewDistanceConstraint(cloth.Anchors[0], cloth.At(0, height-1), 0, weldCompliance),
		components.NewDistanceConstraint(cloth.Anchors[1], cloth.At(width-1, height-1), 0, weldCompliance),
	)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			if i < width-1 {
				body.DistanceConstraints = append(body.DistanceConstraints,
					components.NewDistanceConstraint(cloth.At(i, j), cloth.At(i+1, j), spacing, compliance))
			}
			if j < height-1 {
				body.DistanceConstraints = append(body.DistanceConstraints,
					components.NewDistanceConstraint(cloth.At(i, j), cloth.At(i, j+1), spacing, compliance))
			}
		}
	}
	cloth.Body = s.AddBody(name, body)
	return cloth
}

// BuildTetrahedron creates a single tetrahedron with six edges and one volume constraint.
func (s *Scene) BuildTetrahedron(name string, corners [4]r3.Vec, edgeCompliance, volumeCompliance float64) SoftBody {
	return s.buildTetMesh(name, corners[:], [][4]int{{0, 1, 2, 3}}, edgeCompliance, volumeCompliance)
}

// cubeTets splits a unit cube into five tetrahedra: four corner tets around
// the odd corners and one central tet on the even corners.
// Corner index is x + 2y + 4z; every tet has positive volume.
var cubeTets = [][4]int{
	{1, 0, 5, 3},
	{2, 0, 3, 6},
	{4, 0, 6, 5},
	{7, 3, 5, 6},
	{0, 3, 6, 5},
}

// BuildSoftBox creates a cube of side size with its minimum corner at origin.
func (s *Scene) BuildSoftBox(name string, origin r3.Vec, size, edgeCompliance, volumeCompliance float64) SoftBody {
	corners := make([]r3.Vec, 8)
	for i := range corners {
		offset := r3.Vec{X: float64(i & 1), Y: float64((i >> 1) & 1), Z: float64((i >> 2) & 1)}
		corners[i] = r3.Add(origin, r3.Scale(size, offset))
	}
	return s.buildTetMesh(name, corners, cubeTets, edgeCompliance, volumeCompliance)
}

// buildTetMesh creates one particle per vertex, one distance constraint per
// unique tet edge (first-seen order) and one volume constraint per tet.
func (s *Scene) buildTetMesh(name string, verts []r3.Vec, tets [][4]int, edgeCompliance, volumeCompliance float64) SoftBody {
	sb := SoftBody{Particles: make([]ecs.Entity, len(verts))}
	for i, v := range verts {
		sb.Particles[i] = s.CreateParticle(v, 1)
	}

	type edge struct{ a, b int }
	seen := make(map[edge]bool)
	var body components.DeformableBody
	for _, t := range tets {
		for a := 0; a < 4; a++ {
			for b := a + 1; b < 4; b++ {
				e := edge{t[a], t[b]}
				if e.a > e.b {
					e.a, e.b = e.b, e.a
				}
				if seen[e] {
					continue
				}
				seen[e] = true
				rest := r3.Norm(r3.Sub(verts[e.b], verts[e.a]))
				body.DistanceConstraints = append(body.DistanceConstraints,
					components.NewDistanceConstraint(sb.Particles[e.a], sb.Particles[e.b], rest, edgeCompliance))
			}
		}
		rest := systems.TetVolume(verts[t[0]], verts[t[1]], verts[t[2]], verts[t[3]])
		body.VolumeConstraints = append(body.VolumeConstraints, components.NewVolumeConstraint(
			sb.Particles[t[0]], sb.Particles[t[1]], sb.Particles[t[2]], sb.Particles[t[3]],
			rest, volumeCompliance))
	}
	sb.Body = s.AddBody(name, body)
	return sb
}

// CreatePicker adds a static particle for the mouse picker hook.
func (s *Scene) CreatePicker(pos r3.Vec, scale float64) ecs.Entity {
	e := s.CreateParticle(pos, 0)
	s.transformMap.Get(e).Scale = r3.Vec{X: scale, Y: scale, Z: scale}
	return e
}

// BuildFromConfig builds the enabled sandbox objects from cfg.
// Bodies are named "rod", "cloth" and "softbox".
func (s *Scene) BuildFromConfig(cfg *config.Config) Built {
	var built Built
	sc := cfg.Scene

	if sc.Rod.Enabled {
		rod := s.BuildRod("rod", sc.Rod.Start.R3(), sc.Rod.End.R3(), sc.Rod.Segments, sc.Rod.Compliance)
		built.Rod = &rod
	}
	if sc.Cloth.Enabled {
		cloth := s.BuildCloth("cloth", sc.Cloth.Origin.R3(), sc.Cloth.Width, sc.Cloth.Height,
			sc.Cloth.Spacing, sc.Cloth.Compliance, sc.Cloth.WeldCompliance)
		built.Cloth = &cloth
	}
	if sc.SoftBox.Enabled {
		box := s.BuildSoftBox("softbox", sc.SoftBox.Origin.R3(), sc.SoftBox.Size,
			sc.SoftBox.EdgeCompliance, sc.SoftBox.VolumeCompliance)
		built.SoftBox = &box
	}
	if cfg.Picker.Enabled {
		built.Picker = s.CreatePicker(cfg.Picker.Start.R3(), cfg.Picker.Scale)
	}

	particles, bodies, distance, volume := s.Counts()
	slog.Info("scene built",
		"particles", particles,
		"bodies", bodies,
		"distance_constraints", distance,
		"volume_constraints", volume,
	)
	return built
}
