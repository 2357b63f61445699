// Package shell holds the infrastructure shared by the lending command and query handlers:
// retry with exponential backoff, handler result metadata and observability helpers.
package shell
