// Package review lets users rate published courses. Each user keeps one
// review per course and writing again replaces it.
package review
