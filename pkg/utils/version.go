package utils

import "runtime/debug"

// Release metadata, stamped at link time:
//
//	go build -ldflags "-X github.com/anmerino-pnd/proyectoCenace/pkg/utils.Version=v0.3.0 \
//	  -X github.com/anmerino-pnd/proyectoCenace/pkg/utils.Sha=$(git rev-parse --short HEAD) \
//	  -X github.com/anmerino-pnd/proyectoCenace/pkg/utils.Buildtime=$(date -u +%FT%TZ)"
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// BuildVersion reports Version, falling back to the module version recorded
// by "go install" when the binary was not stamped.
func BuildVersion() string {
	if Version != "dev" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}
	return info.Main.Version
}
