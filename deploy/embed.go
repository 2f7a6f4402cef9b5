// Package deploy bundles the deployment manifest shipped with this
// repository so it can be validated without a checkout.
package deploy

import (
	_ "embed"

	"github.com/losb/stackcheck/internal/filesystems"
)

const (
	ManifestName   = "docker-compose.yml"
	EnvExampleName = ".env.example"
)

//go:embed docker-compose.yml
var manifest []byte

//go:embed .env.example
var envExample []byte

// Manifest returns the bundled compose file.
func Manifest() []byte {
	return append([]byte(nil), manifest...)
}

// EnvExample returns the bundled env example.
func EnvExample() []byte {
	return append([]byte(nil), envExample...)
}

// Files mounts the bundled manifest and env example at the root of an
// in-memory filesystem.
func Files() *filesystems.MemoryFS {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile(ManifestName, Manifest())
	mfs.AddFile(EnvExampleName, EnvExample())
	return mfs
}
