package csg

// Convexity bounds the depth complexity of a primitive: the maximum
// number of front-facing surface layers any view ray can cross.
//
// Convex primitives have exactly one layer. Concave primitives report an
// upper bound above one; the bound sizes the Goldfeather engine's layer
// sweep, so an understated bound produces wrong pixels (a documented
// precondition violation, not an error).
//
// Convexity is a plain data attribute rather than a behavioral interface
// so algorithm selection stays a pure predicate over the primitive list.
type Convexity int

// Convex is the convexity of any convex primitive.
const Convex Convexity = 1

// Concave returns the convexity for a concave primitive with the given
// depth-layer bound. Bounds below two are treated as convex.
func Concave(layers int) Convexity {
	if layers < int(Convex) {
		return Convex
	}
	return Convexity(layers)
}

// Layers reports the depth-layer bound, always at least one.
func (c Convexity) Layers() int {
	if c < Convex {
		return int(Convex)
	}
	return int(c)
}

// IsConcave reports whether the primitive needs the Goldfeather engine.
func (c Convexity) IsConcave() bool { return c > Convex }
