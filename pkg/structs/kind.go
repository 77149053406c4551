package structs

// Kind is the type of object. Doubles as the database table name.
type Kind string

const (
	// KindJob is a job
	KindJob Kind = "job"
)
