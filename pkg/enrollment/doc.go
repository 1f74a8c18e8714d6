// Package enrollment manages course enrollments and lesson completion
// progress for students.
package enrollment
