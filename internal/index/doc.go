// Package index renders the index.html listing of an output directory.
//
// Files are grouped into sections by extension (csv, xlsx and ics first) and
// within a section by team. The team of a file comes from the storage
// manifest, falling back to the file name convention and finally to
// "Unbekannt".
package index
