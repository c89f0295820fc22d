// Package all imports every release notes codec.
//
// Import this package for its side effects to register all formats:
//
//	import (
//		"github.com/git-pkgs/releasenotes"
//		_ "github.com/git-pkgs/releasenotes/all"
//	)
//
//	// Now all formats are available
//	formats := releasenotes.SupportedFormats()
//	// ["json", "toml", "xml", "yaml"]
package all

import (
	_ "github.com/git-pkgs/releasenotes/internal/json"
	_ "github.com/git-pkgs/releasenotes/internal/toml"
	_ "github.com/git-pkgs/releasenotes/internal/xml"
	_ "github.com/git-pkgs/releasenotes/internal/yaml"
)
