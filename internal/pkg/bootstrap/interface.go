package bootstrap

import "github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"

// Bootstrap defines the interface for environment bootstrapping
// operations. Different runtimes implement this interface to provide
// runtime-specific bootstrap functionality.
type Bootstrap interface {
	// Configure performs the complete configuration of the environment:
	// installing the runtime, enabling its socket and preparing the
	// host directories the deploys need.
	Configure() error

	// Validate runs all validation checks to ensure the environment is
	// properly configured. Returns an error if any validation fails.
	Validate(skip map[string]bool) error

	// Type returns the runtime type this bootstrap implementation
	// supports.
	Type() types.RuntimeType
}
