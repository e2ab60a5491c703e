// Package grouping buckets match records by month for hierarchical exports.
//
// Group partitions records into TaskGroups keyed by YYYY-MM, with records whose
// date cannot be parsed collected in a trailing "ohne-datum" group. Groups and
// their children receive sequential synthetic IDs so that a flat export can
// express the parent/child relation.
package grouping
