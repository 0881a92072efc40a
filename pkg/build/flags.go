// SPDX-License-Identifier: MIT
//
// Package build carries the application name, build time, commit and version
// injected at link time, for example:
//
//	go build -ldflags "-X decibel/pkg/build.buildVersion=0.2.0 -X decibel/pkg/build.buildCommit=$(git rev-parse --short HEAD)"
//
// Development builds run without the flags and report the defaults.
package build

import (
	"errors"
	"fmt"
)

// Info is the build metadata of the running binary.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the info for --version output.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

const description = "Terminal audio visualizer: bars that jump to the loudest frequency of each captured frame"

var buildInfo = defaultInfo()

func defaultInfo() *Info {
	return &Info{
		Name:        "decibel",
		Description: description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize copies the ldflags values into the build info. Missing flags
// keep their development defaults and are reported together in the error.
func Initialize() error {
	var errs []error
	set := func(dst *string, value, flag string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", flag))
			return
		}
		*dst = value
	}

	set(&buildInfo.Name, buildName, "BuildName")
	set(&buildInfo.Time, buildTime, "BuildTime")
	set(&buildInfo.Commit, buildCommit, "BuildCommit")
	set(&buildInfo.Version, buildVersion, "BuildVersion")

	return errors.Join(errs...)
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *Info {
	return buildInfo
}
