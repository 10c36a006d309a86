package tracker

import "github.com/masmgr/codetracker-go/internal/model"

// State is the outcome of scanning one frontier element at one transition.
type State int

const (
	StateScanning State = iota
	StateMatched
	StateAmbiguous
	StateIntroduced
	StateExhausted
	StateOracleTimeout
	StateUnresolved
)

var stateNames = map[State]string{
	StateScanning:      "scanning",
	StateMatched:       "matched",
	StateAmbiguous:     "ambiguous",
	StateIntroduced:    "introduced",
	StateExhausted:     "exhausted",
	StateOracleTimeout: "oracle-timeout",
	StateUnresolved:    "unresolved",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the branch ends in this state.
func (s State) Terminal() bool {
	return s != StateMatched && s != StateAmbiguous && s != StateScanning
}

// Step records how one frontier element was resolved.
type Step struct {
	Element    model.CodeElement
	Parent     model.Version
	State      State
	Candidates int
	Reason     string
}
