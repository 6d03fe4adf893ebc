package version

import (
	"fmt"
	"runtime/debug"
)

// version is set at build time with -ldflags "-X .../pkg/version.version=v1.2.3".
var version string

func GetVersion() string {
	if version != "" {
		return version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "Unknown"
	}

	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return fmt.Sprintf("git-%s", setting.Value)
		}
	}

	return "Unknown"
}
