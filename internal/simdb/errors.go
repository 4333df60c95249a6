package simdb

import "errors"

// Typed failures of the extraction layer. Each one is terminal for the file
// being analyzed; callers surface it instead of substituting defaults.
var (
	// ErrFileMissing reports an output database path that does not exist.
	ErrFileMissing = errors.New("simdb: output database does not exist")

	// ErrUnknownAgent reports a prototype name or id with no registry entry.
	ErrUnknownAgent = errors.New("simdb: unknown agent")

	// ErrInvalidAgentRef reports an AgentRef that was not built with ByID,
	// ByName, or AllAgents, or a wildcard used where one agent is required.
	ErrInvalidAgentRef = errors.New("simdb: invalid agent reference")

	// ErrWrongAgentType reports an operation applied to an agent of the
	// wrong archetype, e.g. cycle accounting on a sink.
	ErrWrongAgentType = errors.New("simdb: wrong agent type")

	// ErrMissingNuclide reports a composition that does not contain the
	// requested nuclide.
	ErrMissingNuclide = errors.New("simdb: nuclide not in composition")
)
