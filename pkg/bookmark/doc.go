// Package bookmark lets users save published posts and courses for later.
package bookmark
