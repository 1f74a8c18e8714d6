// Package blog manages blog posts: drafting, publishing, cover images
// and listing for readers and staff.
package blog
