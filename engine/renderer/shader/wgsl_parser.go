package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
)

// wgslVertexFormatMap maps the WGSL types a vertex input may use to the input layout format.
var wgslVertexFormatMap = map[string]renderer.VertexFormat{
	"vec2f":     renderer.FormatFloat32x2,
	"vec2<f32>": renderer.FormatFloat32x2,
	"vec3f":     renderer.FormatFloat32x3,
	"vec3<f32>": renderer.FormatFloat32x3,
	"vec4f":     renderer.FormatFloat32x4,
	"vec4<f32>": renderer.FormatFloat32x4,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct member: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex captures the name and parameter list of the @vertex function
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)\s*\(([^)]*)\)`)

	// fragmentEntryRegex captures the name of the @fragment function
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindingDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations like: @group(0) @binding(0) var<uniform> matrices: MatrixBuffer;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// reflectSource extracts the entry point, vertex inputs and resource bindings of one stage.
//
// Parameters:
//   - source: the WGSL source of the stage
//   - stage: which entry point to look for
//
// Returns:
//   - reflection: what the stage declares
func reflectSource(source string, stage renderer.ShaderStage) reflection {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	sizes := computeStructSizes(structs)

	var r reflection
	if stage == renderer.StageVertex {
		var params string
		if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
			r.entryPoint, params = m[1], m[2]
		}
		if ps, ok := vertexInputStruct(structs, params); ok {
			r.inputs = buildVertexInputs(ps)
		}
	} else if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		r.entryPoint = m[1]
	}
	r.bindings = parseBindings(cleaned, sizes)
	return r
}

// parseBindings extracts every @group(N) @binding(M) declaration, sorted by group and binding.
// Uniform buffers get their size resolved from the struct layouts in sizes.
func parseBindings(cleaned string, sizes map[string]wgslTypeLayout) []reflectedBinding {
	var out []reflectedBinding
	for _, m := range bindingDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		b := reflectedBinding{
			group:        group,
			binding:      binding,
			addressSpace: strings.TrimSpace(m[3]),
			name:         strings.TrimSpace(m[4]),
			typeName:     strings.TrimSpace(m[5]),
		}
		if b.addressSpace == "uniform" {
			if layout, ok := resolveTypeLayout(b.typeName, sizes); ok {
				b.size = layout.size
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].group != out[j].group {
			return out[i].group < out[j].group
		}
		return out[i].binding < out[j].binding
	})
	return out
}

// vertexInputStruct picks the struct the vertex entry point takes as input. When the
// parameter type cannot be matched, the first struct that is a pure vertex input is used.
func vertexInputStruct(structs []parsedStruct, params string) (parsedStruct, bool) {
	if _, typeName, ok := strings.Cut(params, ":"); ok {
		typeName = strings.TrimSpace(typeName)
		for _, ps := range structs {
			if ps.name == typeName {
				return ps, true
			}
		}
	}
	for _, ps := range structs {
		if isVertexInputStruct(ps) {
			return ps, true
		}
	}
	return parsedStruct{}, false
}

// buildVertexInputs converts the @location members of a vertex input struct into inputs
// ordered by location.
func buildVertexInputs(ps parsedStruct) []reflectedInput {
	inputs := make([]reflectedInput, 0, len(ps.fields))
	for _, f := range ps.fields {
		if f.isBuiltin || f.location < 0 {
			continue
		}
		format, known := wgslVertexFormatMap[f.typeName]
		inputs = append(inputs, reflectedInput{
			name:     f.name,
			typeName: f.typeName,
			location: f.location,
			format:   format,
			known:    known,
		})
	}
	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].location < inputs[j].location
	})
	return inputs
}

// parseStructBlocks finds all struct { ... } blocks in comment-free WGSL source.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses a struct body into members with their @location and @builtin
// attributes. Members without @location get location -1.
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}

		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(line),
		}
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}
		fields = append(fields, field)
	}
	return fields
}
