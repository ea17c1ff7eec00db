package ports

// Verifier defines the interface for verifying file existence.
//
//go:generate mockgen -destination=mocks/verifier_mock.go -package=mocks -source=verifier.go
type Verifier interface {
	// VerifyOutputs reports whether every path exists.
	VerifyOutputs(paths []string) (bool, error)
}
