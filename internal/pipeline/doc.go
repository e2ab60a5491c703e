// Package pipeline runs the fetch, transform and write steps of an export.
package pipeline
