// Package registry provides the static application catalog.
//
// The catalog is an embedded YAML document listing every application the
// desktop can launch. It is parsed and validated once at startup; after that
// the Registry is read-only and safe for concurrent use.
//
// Each entry carries a kind that selects the behavior instantiated when a
// window for it opens (notepad, about, wallpaper, chat), whether several
// windows may be open at once, and an optional default window size.
//
// Example Usage:
//
//	reg := registry.MustDefault()
//	if desc, ok := reg.Lookup("notepad"); ok {
//	    fmt.Println(desc.Title, desc.WindowSize())
//	}
package registry
