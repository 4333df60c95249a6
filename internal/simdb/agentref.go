package simdb

import "fmt"

// AgentRef identifies an agent by numeric id, by prototype name, or matches
// every agent. The zero value is invalid and fails resolution.
type AgentRef struct {
	kind refKind
	id   int64
	name string
}

type refKind uint8

const (
	refInvalid refKind = iota
	refID
	refName
	refAll
)

// ByID references an agent by its numeric id. Ids pass through resolution
// unchecked, the same way a raw id behaves in a hand-written query.
func ByID(id int64) AgentRef { return AgentRef{kind: refID, id: id} }

// ByName references an agent by its prototype name. Resolution fails with
// ErrUnknownAgent when the name is not registered.
func ByName(name string) AgentRef { return AgentRef{kind: refName, name: name} }

// AllAgents matches every agent. Transfer queries leave that side of the
// transaction filter open.
func AllAgents() AgentRef { return AgentRef{kind: refAll} }

func (r AgentRef) String() string {
	switch r.kind {
	case refID:
		return fmt.Sprintf("agent %d", r.id)
	case refName:
		return fmt.Sprintf("agent %q", r.name)
	case refAll:
		return "all agents"
	default:
		return "invalid agent reference"
	}
}
