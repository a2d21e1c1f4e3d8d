package shader

import "github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"

// wgslTypeLayout holds the byte size and alignment of a WGSL type in the uniform address space.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one member of a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// reflectedInput is one @location input of a vertex entry point.
type reflectedInput struct {
	name     string
	typeName string
	location int
	format   renderer.VertexFormat
	known    bool
}

// reflectedBinding is one @group/@binding variable. size is only set for uniform buffers
// whose type could be resolved.
type reflectedBinding struct {
	group        int
	binding      int
	addressSpace string
	name         string
	typeName     string
	size         uint64
}

// reflection is everything a single stage's source declares that pipeline creation checks.
type reflection struct {
	entryPoint string
	inputs     []reflectedInput
	bindings   []reflectedBinding
}

// uniform returns the uniform binding at group/binding, if declared.
func (r reflection) uniform(group, binding int) (reflectedBinding, bool) {
	for _, b := range r.bindings {
		if b.group == group && b.binding == binding && b.addressSpace == "uniform" {
			return b, true
		}
	}
	return reflectedBinding{}, false
}

// resource returns the handle-typed binding (texture or sampler) at group/binding, if declared.
func (r reflection) resource(group, binding int) (reflectedBinding, bool) {
	for _, b := range r.bindings {
		if b.group == group && b.binding == binding && b.addressSpace == "" {
			return b, true
		}
	}
	return reflectedBinding{}, false
}
