package board

// Debug gates the extra move/position consistency assertions described by
// the package's testable invariants. Off by default: release builds trust
// validated inputs and pay nothing for the checks. Tests that want the
// stricter behavior set this directly.
var Debug = false

func assert(cond bool, msg string) {
	if Debug && !cond {
		panic("board: invariant violated: " + msg)
	}
}
