// Package file keeps the vsync configuration in a TOML file under the
// config directory and reports edits to it.
//
//   - ConfigStore reads and writes ~/.vsync/config.toml
//   - Watcher signals when that file is rewritten, for simulate --watch
package file
