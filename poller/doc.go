// Package poller runs a LIN schedule table: an ordered list of publish and
// subscribe entries executed against a bus master, one slot after another.
//
// Subscribe entries can be retried on response failures and verified against
// a checksum model. The latest result of every entry is kept in a concurrent
// cache that readers may query while the schedule runs.
package poller
