// Package batch provides helpers for tools that act on several items at once.
//
// This package includes helpers for:
//   - Parsing parameters that accept a single value, an array or a JSON-encoded array
//   - Running one task per item concurrently and collecting outcomes in input order
package batch
