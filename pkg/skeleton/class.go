// Package skeleton extracts the topology of a thinned 3D skeleton: voxel
// classification, end-branch pruning, tree labeling, branch tracing,
// junction grouping and triple-point detection.
package skeleton

// Class is the topological role of a skeleton voxel
type Class uint8

const (
	Background Class = iota
	EndPoint
	Junction
	Slab
)

// Label values written into the tagged volume
const (
	TagEndPoint uint8 = 30
	TagJunction uint8 = 70
	TagSlab     uint8 = 127
)

// Tag returns the label stored in the tagged volume for c
func (c Class) Tag() uint8 {
	switch c {
	case EndPoint:
		return TagEndPoint
	case Junction:
		return TagJunction
	case Slab:
		return TagSlab
	default:
		return 0
	}
}

func (c Class) String() string {
	switch c {
	case EndPoint:
		return "end-point"
	case Junction:
		return "junction"
	case Slab:
		return "slab"
	default:
		return "background"
	}
}

// ClassOf decodes a tagged volume label
func ClassOf(tag uint8) Class {
	switch tag {
	case TagEndPoint:
		return EndPoint
	case TagJunction:
		return Junction
	case TagSlab:
		return Slab
	default:
		return Background
	}
}

// classify maps a live-neighbour count to a class
func classify(neighbors int) Class {
	switch {
	case neighbors < 2:
		return EndPoint
	case neighbors > 2:
		return Junction
	default:
		return Slab
	}
}
