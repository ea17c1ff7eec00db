package domain

// SessionState is the position of a build session in its lifecycle.
type SessionState string

const (
	StateCreated     SessionState = "created"
	StateConfiguring SessionState = "configuring"
	StateCompiling   SessionState = "compiling"
	StateLinked      SessionState = "linked"
	StateFlushed     SessionState = "flushed"
	StateFailed      SessionState = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s SessionState) IsTerminal() bool {
	return s == StateFlushed || s == StateFailed
}

// UnitOutput is everything one spec contributed to a session.
type UnitOutput struct {
	Unit       string          `json:"unit"`
	Kind       UnitKind        `json:"kind"`
	Artifact   Artifact        `json:"artifact"`
	Directives []LinkDirective `json:"directives"`
	Triggers   []string        `json:"triggers"`
}

// SessionOutput is what a session hands to an emitter when it flushes.
type SessionOutput struct {
	Triggers   []string        `json:"triggers"`
	Directives []LinkDirective `json:"directives"`
	Units      []UnitOutput    `json:"units"`
}
