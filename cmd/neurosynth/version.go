package main

import (
	"runtime"
	"runtime/debug"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func buildInfo() any {
	payload := map[string]string{
		"name":    "neurosynth",
		"version": version,
		"go":      runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				payload["commit"] = setting.Value
			case "vcs.time":
				payload["built"] = setting.Value
			}
		}
	}
	return payload
}
