package spatial

import (
	"math"

	"github.com/lixenwraith/occlusion/constant"
	"github.com/lixenwraith/occlusion/vmath"
)

// rolloff returns inverse-distance gain in (0, 1]
// Distances are in world units; min/max distance scale with the distance factor
func (s *System) rolloff(dist float64) float64 {
	minD := constant.AudioMinDistance * s.distanceFactor
	maxD := constant.AudioMaxDistance * s.distanceFactor
	if dist > maxD {
		dist = maxD
	}
	if dist <= minD || s.rolloffScale == 0 {
		return 1
	}
	return minD / (minD + s.rolloffScale*(dist-minD))
}

// listenerRight derives the right vector from forward/up according to handedness
func (s *System) listenerRight() vmath.Vec3 {
	l := s.listener
	if s.flags&Init3DRightHanded != 0 {
		return vmath.V3Normalize(vmath.V3Cross(l.forward, l.up))
	}
	return vmath.V3Normalize(vmath.V3Cross(l.up, l.forward))
}

// pan projects the emitter direction onto the listener right vector, [-1, 1]
func (s *System) pan(emitter vmath.Vec3) float64 {
	rel := vmath.V3Sub(emitter, s.listener.pos)
	if vmath.V3MagSq(rel) == 0 {
		return 0
	}
	p := vmath.V3Dot(vmath.V3Normalize(rel), s.listenerRight())
	return math.Max(-1, math.Min(1, p))
}

// occlusion multiplies the direct-path transmission of every polygon crossed
// by the listener->emitter segment; single-sided polygons only occlude from the front
func (s *System) occlusion(emitter vmath.Vec3) float64 {
	gain := 1.0
	for _, g := range s.geometries {
		if !g.active || g.released {
			continue
		}
		for i := range g.polygons {
			p := &g.polygons[i]
			_, facing, hit := vmath.SegmentPolygon(s.listener.pos, emitter, p.world)
			if !hit {
				continue
			}
			if !p.doubleSided && facing > 0 {
				continue
			}
			gain *= 1 - p.direct
			if gain == 0 {
				return 0
			}
		}
	}
	return gain
}

// doppler returns the pitch ratio for an emitter moving relative to the listener
func (s *System) doppler(emitter, emitterVel vmath.Vec3) float64 {
	if s.dopplerScale == 0 {
		return 1
	}
	toListener := vmath.V3Sub(s.listener.pos, emitter)
	if vmath.V3MagSq(toListener) == 0 {
		return 1
	}
	dir := vmath.V3Normalize(toListener)

	c := constant.AudioSpeedOfSound * s.distanceFactor
	vs := vmath.V3Dot(emitterVel, dir) * s.dopplerScale
	vl := vmath.V3Dot(s.listener.vel, dir) * s.dopplerScale

	// Keep both speeds subsonic so the ratio stays finite and positive
	limit := c * constant.AudioDopplerSpeedLimit
	vs = math.Max(-limit, math.Min(limit, vs))
	vl = math.Max(-limit, math.Min(limit, vl))

	return (c - vl) / (c - vs)
}
