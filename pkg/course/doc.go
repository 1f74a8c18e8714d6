// Package course manages courses and their ordered lessons.
package course
