// Package storage manages the output directory of a spielplan run.
//
// It creates the directory, builds file names following the
// <Prefix>_<Team>_<YYYY-MM-DD_HH-MM-SS>.<ext> convention and keeps a JSON
// manifest (manifest.json) that records which team every written file
// belongs to, so later readers do not have to re-derive it from the name.
package storage
