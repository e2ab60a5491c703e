// Package export serializes match records to CSV, XLSX and the hierarchical
// Jira import CSV.
//
// The CSV writers emit UTF-8 with a byte-order mark so spreadsheet tools
// pick up umlauts correctly. The XLSX writer uses the same nine columns with
// a styled header and alternating row shading.
package export
