package csg

// Operation tags a primitive with its role in the composed solid.
//
// The composed solid is the intersection of all Intersection-tagged
// primitive volumes minus the union of all Subtraction-tagged ones.
// The zero value is Intersection, so an unset tag means "intersect".
type Operation uint8

const (
	// Intersection keeps only the space inside the primitive.
	Intersection Operation = iota

	// Subtraction removes the space inside the primitive.
	Subtraction
)

// String returns the string representation of the operation.
func (op Operation) String() string {
	switch op {
	case Intersection:
		return "Intersection"
	case Subtraction:
		return "Subtraction"
	default:
		return "Unknown"
	}
}
