package fatefinder

import _ "embed"

// Version is the release of this module, trimmed by callers.
//
//go:embed VERSION
var Version string
