// Package web holds the embedded browser front end.
package web

import _ "embed"

// IndexHTML is the single page served at /.
//
//go:embed index.html
var IndexHTML []byte
