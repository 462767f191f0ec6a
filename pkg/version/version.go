// Package version holds the build identity of aurora-logmon.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

const devVersion = "0.0.0-dev"

// Set through -ldflags "-X github.com/diillson/aurora-logmon/pkg/version.Version=...".
// Empty or dev values are filled from the VCS stamp of the binary.
var (
	Version   = devVersion
	Commit    = ""
	BuildTime = ""
)

func init() {
	if bi, ok := debug.ReadBuildInfo(); ok {
		fromBuildSettings(bi.Settings)
	}
}

// fromBuildSettings fills the unset fields from vcs.* build settings.
func fromBuildSettings(settings []debug.BuildSetting) {
	vcs := make(map[string]string, len(settings))
	for _, s := range settings {
		vcs[s.Key] = s.Value
	}

	if Commit == "" && len(vcs["vcs.revision"]) >= 7 {
		Commit = vcs["vcs.revision"][:7]
	}
	if BuildTime == "" {
		if ts, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	if (Version == "" || Version == devVersion) && vcs["vcs.tag"] != "" {
		Version = strings.TrimPrefix(vcs["vcs.tag"], "v")
		if strings.EqualFold(vcs["vcs.modified"], "true") {
			Version += "-dirty"
		}
	}
}

// FormatVersion retorna a versão com commit e horário de build, quando conhecidos.
// Ex.: "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)".
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = devVersion
	}

	switch {
	case Commit == "" && BuildTime == "":
		return fmt.Sprintf("%s (development)", ver)
	case BuildTime == "":
		return fmt.Sprintf("%s (commit: %s)", ver, Commit)
	}

	commit := Commit
	if commit == "" {
		commit = "development"
	}
	return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, commit, BuildTime)
}

// AppID identifies the monitor in the user agent of its AWS API calls.
func AppID() string {
	ver := Version
	if ver == "" {
		ver = devVersion
	}
	return "aurora-logmon-" + ver
}
