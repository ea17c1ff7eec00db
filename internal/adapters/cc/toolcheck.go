package cc

import (
	"os/exec"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ToolChecker = (*PathChecker)(nil)

// PathChecker implements ports.ToolChecker by searching PATH.
type PathChecker struct {
	lookPath func(string) (string, error)
}

// NewPathChecker creates a PathChecker backed by exec.LookPath.
func NewPathChecker() *PathChecker {
	return &PathChecker{lookPath: exec.LookPath}
}

// Check fails with domain.ErrToolNotFound on the first tool that cannot be found.
// Tools given as paths are checked for existence and the execute bit.
func (c *PathChecker) Check(tools ...string) error {
	for _, tool := range tools {
		if tool == "" {
			continue
		}
		if _, err := c.lookPath(tool); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrToolNotFound, err.Error()), "tool", tool)
		}
	}
	return nil
}
