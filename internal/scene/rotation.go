package scene

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationBetween returns the minimal rotation mapping direction from
// onto direction to. Inputs need not be unit length but must be non-zero.
//
// The degenerate antiparallel case (from ≈ −to) has no unique minimal
// rotation; any axis perpendicular to from by π is used.
func RotationBetween(from, to r3.Vec) r3.Rotation {
	f := r3.Unit(from)
	t := r3.Unit(to)

	c := r3.Cross(f, t)
	sin := r3.Norm(c)
	cos := r3.Dot(f, t)

	if sin < 1e-12 {
		if cos > 0 {
			return identity()
		}
		return r3.NewRotation(math.Pi, perpendicular(f))
	}

	return r3.NewRotation(math.Atan2(sin, cos), c)
}

func identity() r3.Rotation {
	return r3.Rotation(quat.Number{Real: 1})
}

// perpendicular returns an arbitrary unit vector perpendicular to v.
func perpendicular(v r3.Vec) r3.Vec {
	ref := r3.Vec{X: 1}
	if math.Abs(v.X) > 0.9 {
		ref = r3.Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(v, ref))
}
