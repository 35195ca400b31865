package version

import (
	"runtime"
)

type Version struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// VERSION is set at build time with -ldflags "-X github.com/mumoshu/itest/pkg/cli/version.VERSION=v1.0.0".
var VERSION string

func Get() Version {
	v := VERSION
	if v == "" {
		v = "dev"
	}
	return Version{
		Version:   v,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
