package cc

// NewPathCheckerWith exposes the lookup hook to tests.
func NewPathCheckerWith(lookPath func(string) (string, error)) *PathChecker {
	return &PathChecker{lookPath: lookPath}
}

// ObjectName exposes objectName to tests.
var ObjectName = objectName
