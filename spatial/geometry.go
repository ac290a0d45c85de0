package spatial

import (
	"fmt"
	"math"

	"github.com/lixenwraith/occlusion/vmath"
)

// polygon is one occluding face; world vertices are cached on every move
type polygon struct {
	direct      float64
	reverb      float64
	doubleSided bool
	local       []vmath.Vec3
	world       []vmath.Vec3
}

// Geometry is a group of occluding polygons sharing one world position
type Geometry struct {
	sys *System

	maxPolygons int
	maxVertices int
	vertexCount int

	polygons []polygon
	position vmath.Vec3
	active   bool
	released bool
}

// CreateGeometry registers an empty, active geometry object with fixed capacity
func (s *System) CreateGeometry(maxPolygons, maxVertices int) (*Geometry, error) {
	if maxPolygons <= 0 || maxVertices <= 0 {
		return nil, fmt.Errorf("%w: geometry capacity %d/%d", ErrInvalidParam, maxPolygons, maxVertices)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return nil, err
	}

	g := &Geometry{
		sys:         s,
		maxPolygons: maxPolygons,
		maxVertices: maxVertices,
		polygons:    make([]polygon, 0, maxPolygons),
		active:      true,
	}
	s.geometries = append(s.geometries, g)
	return g, nil
}

// AddPolygon adds a convex planar polygon in geometry-local space and returns its index
// Occlusion factors are clamped to [0, 1]: 1 blocks the direct path completely
func (g *Geometry) AddPolygon(directOcclusion, reverbOcclusion float64, doubleSided bool, vertices []Vector) (int, error) {
	if len(vertices) < 3 {
		return -1, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidParam, len(vertices))
	}
	if math.IsNaN(directOcclusion) || math.IsNaN(reverbOcclusion) {
		return -1, fmt.Errorf("%w: occlusion is NaN", ErrInvalidParam)
	}

	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	if err := g.checkLive(); err != nil {
		return -1, err
	}
	if len(g.polygons) >= g.maxPolygons || g.vertexCount+len(vertices) > g.maxVertices {
		return -1, ErrGeometryFull
	}

	local := make([]vmath.Vec3, len(vertices))
	for i, v := range vertices {
		local[i] = v.ToVec3()
	}
	if vmath.V3MagSq(vmath.PolygonNormal(local)) == 0 {
		return -1, fmt.Errorf("%w: degenerate polygon", ErrInvalidParam)
	}

	p := polygon{
		direct:      clamp01(directOcclusion),
		reverb:      clamp01(reverbOcclusion),
		doubleSided: doubleSided,
		local:       local,
	}
	p.world = translate(local, g.position)

	g.polygons = append(g.polygons, p)
	g.vertexCount += len(vertices)
	return len(g.polygons) - 1, nil
}

// SetPosition moves the whole geometry in world space
func (g *Geometry) SetPosition(pos Vector) error {
	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	if err := g.checkLive(); err != nil {
		return err
	}
	g.position = pos.ToVec3()
	for i := range g.polygons {
		g.polygons[i].world = translate(g.polygons[i].local, g.position)
	}
	return nil
}

// Position returns the world offset
func (g *Geometry) Position() Vector {
	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	return VectorFrom(g.position)
}

// SetActive enables or disables occlusion from this geometry
func (g *Geometry) SetActive(active bool) error {
	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	if err := g.checkLive(); err != nil {
		return err
	}
	g.active = active
	return nil
}

// Active reports whether the geometry occludes
func (g *Geometry) Active() bool {
	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	return g.active
}

// NumPolygons returns the polygon count
func (g *Geometry) NumPolygons() int {
	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	return len(g.polygons)
}

// PolygonVertices returns world-space vertices of polygon index
func (g *Geometry) PolygonVertices(index int) ([]Vector, error) {
	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	if index < 0 || index >= len(g.polygons) {
		return nil, fmt.Errorf("%w: polygon %d of %d", ErrInvalidParam, index, len(g.polygons))
	}
	world := g.polygons[index].world
	out := make([]Vector, len(world))
	for i, v := range world {
		out[i] = VectorFrom(v)
	}
	return out, nil
}

// Release unregisters the geometry
func (g *Geometry) Release() error {
	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	if g.released {
		return ErrInvalidHandle
	}
	g.released = true
	for i, other := range g.sys.geometries {
		if other == g {
			g.sys.geometries = append(g.sys.geometries[:i], g.sys.geometries[i+1:]...)
			break
		}
	}
	return nil
}

// checkLive must be called with sys.mu held
func (g *Geometry) checkLive() error {
	if g.released {
		return ErrInvalidHandle
	}
	return g.sys.checkLive()
}

func translate(local []vmath.Vec3, offset vmath.Vec3) []vmath.Vec3 {
	world := make([]vmath.Vec3, len(local))
	for i, v := range local {
		world[i] = vmath.V3Add(v, offset)
	}
	return world
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// PolygonOcclusion returns the clamped direct and reverb occlusion of polygon index
func (g *Geometry) PolygonOcclusion(index int) (direct, reverb float64, err error) {
	g.sys.mu.Lock()
	defer g.sys.mu.Unlock()
	if index < 0 || index >= len(g.polygons) {
		return 0, 0, fmt.Errorf("%w: polygon %d of %d", ErrInvalidParam, index, len(g.polygons))
	}
	p := g.polygons[index]
	return p.direct, p.reverb, nil
}
