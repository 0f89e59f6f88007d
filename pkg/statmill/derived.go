package statmill

import (
	"fmt"

	"github.com/statmill/statmill/pkg/statmill/dump"
)

// Derived metrics are fixed compositions over a CPU's counter subtree,
// provided as sugar so formulas can say IPC('system.cpu') instead of
// spelling out the division. Both the classic gem5 counter names
// (committedInsts/numCycles) and the simplified instructions/cycles
// spellings are accepted.

var (
	instructionNames = []string{"committedInsts", "instructions"}
	cycleNames       = []string{"numCycles", "cycles"}
)

// IPC returns a node computing instructions per cycle for the CPU rooted at
// base. When the cycle count is zero the optional default is returned;
// without one the division follows the usual IEEE-754 policy.
func IPC(base string, def *float64) Node {
	return &cpuRatioNode{name: "IPC", base: base, def: def, inverse: false}
}

// CPI returns a node computing cycles per instruction for the CPU rooted at
// base. The default applies when the instruction count is zero.
func CPI(base string, def *float64) Node {
	return &cpuRatioNode{name: "CPI", base: base, def: def, inverse: true}
}

type cpuRatioNode struct {
	name    string
	base    string
	def     *float64
	inverse bool
}

func (n *cpuRatioNode) Eval(s *dump.Snapshot) (float64, error) {
	insts, err := lookupAny(s, n.base, instructionNames)
	if err != nil {
		return 0, err
	}
	cycles, err := lookupAny(s, n.base, cycleNames)
	if err != nil {
		return 0, err
	}

	num, den := insts, cycles
	if n.inverse {
		num, den = cycles, insts
	}
	if den == 0 && n.def != nil {
		return *n.def, nil
	}
	return num / den, nil
}

func lookupAny(s *dump.Snapshot, base string, suffixes []string) (float64, error) {
	for _, suffix := range suffixes {
		name := base + "." + suffix
		if s.Has(name) {
			return s.Get(name)
		}
	}
	return 0, &dump.NameError{Name: base + "." + suffixes[0]}
}

func (n *cpuRatioNode) Reset() {}

func (n *cpuRatioNode) String() string {
	return fmt.Sprintf("%s(%q)", n.name, n.base)
}
