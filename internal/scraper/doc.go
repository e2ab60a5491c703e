// Package scraper fetches team match lists from the football federation.
//
// The default source is the public widget JSON API, which returns a team
// descriptor and the team's matches. Alternatively the team's HTML schedule
// page can be parsed. Both sources yield the same raw match shape. Requests
// are spaced by a rate limiter and bounded by the HTTP client timeout; there
// are no retries.
package scraper
