package palette

import (
	"math"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/encreerr"
)

// hullBaseEpsilon is the plane-membership tolerance used while classifying
// points during hull construction. It is scaled by the point cloud's
// extent in buildHull.
const hullBaseEpsilon = 1e-7

type vec3 struct{ x, y, z float64 }

type rawFace struct {
	plane Plane
}

func point(o colorspace.Oklab) vec3 { return vec3{o.L, o.A, o.B} }

func (a vec3) sub(b vec3) vec3  { return vec3{a.x - b.x, a.y - b.y, a.z - b.z} }
func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a.y*b.z - a.z*b.y,
		a.z*b.x - a.x*b.z,
		a.x*b.y - a.y*b.x,
	}
}
func (a vec3) dot(b vec3) float64 { return a.x*b.x + a.y*b.y + a.z*b.z }
func (a vec3) norm() float64      { return math.Sqrt(a.dot(a)) }

// buildHull computes the 3-D convex hull of pts: a brute-force
// O(n^3)-candidate-faces algorithm that tests every triple as a candidate
// face and keeps the ones with every other point on one side. Adequate for
// the small (<=32) palettes this module builds hulls for. It returns the
// indices into pts that are hull vertices, and the set of oriented face
// planes with outward normals.
func buildHull(pts []colorspace.Oklab) (vertexIdx []int, faces []Plane, err error) {
	n := len(pts)
	if n < 4 {
		return nil, nil, encreerr.ErrTooFewColors
	}

	v := make([]vec3, n)
	for i, p := range pts {
		v[i] = point(p)
	}

	if isCoplanar(v) {
		return nil, nil, encreerr.ErrDegenerateGamut
	}

	eps := scaledEpsilon(v)

	var rawFaces []rawFace
	seenVertex := make([]bool, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				e1 := v[j].sub(v[i])
				e2 := v[k].sub(v[i])
				normal := e1.cross(e2)
				length := normal.norm()
				if length < hullBaseEpsilon {
					continue // collinear triple, no unique plane
				}
				normal = vec3{normal.x / length, normal.y / length, normal.z / length}
				d := -normal.dot(v[i])

				maxVal, minVal := math.Inf(-1), math.Inf(1)
				for _, p := range v {
					val := normal.dot(p) + d
					if val > maxVal {
						maxVal = val
					}
					if val < minVal {
						minVal = val
					}
				}

				var plane Plane
				valid := false
				switch {
				case maxVal <= eps:
					plane = Plane{Nx: normal.x, Ny: normal.y, Nz: normal.z, D: d}
					valid = true
				case minVal >= -eps:
					plane = Plane{Nx: -normal.x, Ny: -normal.y, Nz: -normal.z, D: -d}
					valid = true
				}
				if !valid {
					continue
				}

				if containsPlane(rawFaces, plane, eps) {
					continue
				}
				rawFaces = append(rawFaces, rawFace{plane: plane})
				seenVertex[i] = true
				seenVertex[j] = true
				seenVertex[k] = true
			}
		}
	}

	if len(rawFaces) < 4 {
		return nil, nil, encreerr.ErrDegenerateGamut
	}

	faces = make([]Plane, len(rawFaces))
	for i, f := range rawFaces {
		faces[i] = f.plane
	}
	for i := 0; i < n; i++ {
		if seenVertex[i] {
			vertexIdx = append(vertexIdx, i)
		}
	}

	return vertexIdx, faces, nil
}

func containsPlane(faces []rawFace, p Plane, eps float64) bool {
	for _, f := range faces {
		if math.Abs(f.plane.Nx-p.Nx) < eps && math.Abs(f.plane.Ny-p.Ny) < eps &&
			math.Abs(f.plane.Nz-p.Nz) < eps && math.Abs(f.plane.D-p.D) < eps {
			return true
		}
	}
	return false
}

// isCoplanar reports whether every point in v lies within a volume-scaled
// tolerance of a single plane, using the largest scalar triple product
// among all triples anchored at v[0] as the test statistic.
func isCoplanar(v []vec3) bool {
	origin := v[0]
	maxAbsVolume := 0.0
	maxExtent := 0.0
	for i := 1; i < len(v); i++ {
		d := v[i].sub(origin).norm()
		if d > maxExtent {
			maxExtent = d
		}
	}
	if maxExtent == 0 {
		return true
	}

	for i := 1; i < len(v); i++ {
		for j := i + 1; j < len(v); j++ {
			for k := j + 1; k < len(v); k++ {
				a := v[i].sub(origin)
				b := v[j].sub(origin)
				c := v[k].sub(origin)
				vol := math.Abs(a.cross(b).dot(c))
				if vol > maxAbsVolume {
					maxAbsVolume = vol
				}
			}
		}
	}

	return maxAbsVolume < 1e-9*maxExtent*maxExtent*maxExtent
}

func scaledEpsilon(v []vec3) float64 {
	maxExtent := 0.0
	for i := range v {
		for j := i + 1; j < len(v); j++ {
			d := v[i].sub(v[j]).norm()
			if d > maxExtent {
				maxExtent = d
			}
		}
	}
	if maxExtent == 0 {
		maxExtent = 1
	}
	return hullBaseEpsilon * maxExtent
}
