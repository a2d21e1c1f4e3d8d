package shader

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
)

// ProgramBuilderOption is a functional option applied to a Program during construction via NewProgram.
type ProgramBuilderOption func(*programImpl)

// WithSources sets the file system technique sources are read from.
//
// Parameters:
//   - sources: the file system, e.g. DefaultSources() or DirSources("shaders")
//
// Returns:
//   - ProgramBuilderOption: a function that applies the sources option
func WithSources(sources fs.FS) ProgramBuilderOption {
	return func(p *programImpl) {
		p.sources = sources
	}
}

// WithDiagnosticsPath sets the file a compiler diagnostic is written to when a stage fails to compile.
//
// Parameters:
//   - path: the diagnostics file path
//
// Returns:
//   - ProgramBuilderOption: a function that applies the diagnostics path option
func WithDiagnosticsPath(path string) ProgramBuilderOption {
	return func(p *programImpl) {
		p.diagnosticsPath = path
	}
}

// WithRingSize sets how many SetParameters calls each constant buffer can absorb in one frame.
//
// Parameters:
//   - slots: the number of slots per constant buffer ring
//
// Returns:
//   - ProgramBuilderOption: a function that applies the ring size option
func WithRingSize(slots int) ProgramBuilderOption {
	return func(p *programImpl) {
		p.ringSize = slots
	}
}

// WithSampler overrides the sampler every draw of the program uses.
//
// Parameters:
//   - desc: the sampler configuration
//
// Returns:
//   - ProgramBuilderOption: a function that applies the sampler option
func WithSampler(desc renderer.SamplerDescriptor) ProgramBuilderOption {
	return func(p *programImpl) {
		p.samplerDesc = desc
	}
}
