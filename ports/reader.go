// Package ports declares the boundary interfaces between the analysis core
// and the outside world. Adapters implement them; the core and app layers
// depend only on the interfaces.
package ports

import (
	"goadmit/domain/system"
)

// SystemReader loads an enforcement system specification from a named
// source. Implementations validate nothing beyond syntax; structural
// validation happens in system.New.
type SystemReader interface {
	ReadSpec(path string) (system.Spec, error)
}
