// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Do not import any other tracediff packages to avoid import cycles.

package version

import "runtime/debug"

// Name is the binary name, also used in the User-Agent of backend requests.
const Name = "tracediff"

var Version = func() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}()

// UserAgent returns "tracediff/<version>".
func UserAgent() string {
	return Name + "/" + Version
}
