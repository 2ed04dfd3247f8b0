// Package testing provides a conformance suite for provider implementations.
//
// Usage:
//
//	func TestMyProvider(t *testing.T) {
//	    suite := &providertesting.ProviderTestSuite{
//	        NewRoot: func(t *testing.T) provider.DirectoryHandle {
//	            return newEmptyRoot(t)
//	        },
//	    }
//	    suite.Run(t)
//	}
package testing

import (
	"context"
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// ProviderTestSuite checks the raw-level contract every provider must honor.
//
// NewRoot must return an empty, writable root directory. The suite never
// shares a root between subtests.
type ProviderTestSuite struct {
	NewRoot func(t *testing.T) provider.DirectoryHandle
}

// Run executes every test group.
func (suite *ProviderTestSuite) Run(t *testing.T) {
	t.Run("Lookup", suite.RunLookupTests)
	t.Run("Remove", suite.RunRemoveTests)
	t.Run("Resolve", suite.RunResolveTests)
	t.Run("Enumerate", suite.RunEnumerateTests)
	t.Run("Writable", suite.RunWritableTests)
	t.Run("Identity", suite.RunIdentityTests)
}

func testContext() context.Context {
	return context.Background()
}
