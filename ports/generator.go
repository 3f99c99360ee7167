package ports

import (
	"goadmit/domain/system"
)

// Sample is one probe draw: a system together with an interface and the
// interior/exterior subsets whose factorization is to be tested.
type Sample struct {
	Sys      *system.System
	Iface    system.InterfaceID
	Interior system.Subset
	Exterior system.Subset
}

// SampleGenerator produces the i-th sample of a family, for i in
// [0, budget). Indexed generation keeps parallel probes reproducible: the
// sample at index i never depends on evaluation order.
type SampleGenerator interface {
	Generate(i int) (Sample, error)
}
