// Package match provides the normalized match record exported by spielplan.
//
// Raw matches as delivered by the federation API are mapped into Records by
// FromRaw. The package also parses the fixed DD.MM.YYYY and HH:MM formats the
// API uses and orders records by kickoff.
package match
