package testing

import (
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// StoreTestSuite is a comprehensive test suite for MetadataStore implementations.
// It tests the interface contract, not implementation details, making it reusable
// across different implementations (memory, badger, etc.).
//
// Usage:
//
//	func TestMyMetadataStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func() metadata.MetadataStore {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh MetadataStore instance
	// for each test. This ensures test isolation.
	NewStore func() metadata.MetadataStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Root", suite.RunRootTests)
	t.Run("File", suite.RunFileTests)
	t.Run("Directory", suite.RunDirectoryTests)
	t.Run("Remove", suite.RunRemoveTests)
	t.Run("ContentReferences", suite.RunContentReferenceTests)
}
