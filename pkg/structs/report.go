package structs

// DependencyReport is the result of statically scanning a script's imports
// against the installed package snapshot. It is ephemeral; the executor
// consumes it immediately to decide whether to run the script at all.
type DependencyReport struct {
	// Imports are the external (non standard library) imports declared by
	// the script, in first-seen order, mapped to installable package names.
	Imports []string `json:"imports"`

	// Missing are declared packages absent from the install snapshot.
	Missing []string `json:"missing"`

	// Present are declared packages found in the install snapshot.
	Present []string `json:"present"`
}

// AllSatisfied is true when the script's declared dependencies are all
// installed.
func (r *DependencyReport) AllSatisfied() bool {
	return len(r.Missing) == 0
}
