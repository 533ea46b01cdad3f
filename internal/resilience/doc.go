// Package resilience groups reliability patterns used around model calls:
// retry with exponential backoff (retry) and circuit breaking (circuitbreaker).
package resilience
