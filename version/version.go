package version

import (
	"fmt"
	"runtime"
)

var (
	// NAME is the binary name
	NAME = "console-agent"
	// VERSION is set by ldflags on release builds
	VERSION = "unknown"
	// REVISION is the git revision
	REVISION = "HEAD"
	// BUILTAT is the build datetime
	BUILTAT = "now"
)

// String builds the version detail
func String() string {
	version := ""
	version += fmt.Sprintf("Version:        %s\n", VERSION)
	version += fmt.Sprintf("Git hash:       %s\n", REVISION)
	version += fmt.Sprintf("Built:          %s\n", BUILTAT)
	version += fmt.Sprintf("Golang version: %s\n", runtime.Version())
	version += fmt.Sprintf("OS/Arch:        %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return version
}
