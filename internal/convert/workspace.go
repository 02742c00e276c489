package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// newWorkspace creates a unique job directory under root (or the system
// temp area when root is empty). Concurrent jobs share the temporary-file
// area, so every job writes into its own namespace to avoid collisions.
func newWorkspace(root string) (string, error) {
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "glb2step-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create job workspace: %w", err)
	}
	return dir, nil
}
