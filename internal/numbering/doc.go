// Package numbering computes the epoch an order number belongs to.
//
// Four modes are supported:
//   - Global: one epoch for all time, numbers never reset
//   - Daily: a 24-hour day beginning at a configured hour (midnight by default)
//   - BusinessDay: the same algorithm with its own start hour setting
//   - Daypart: breakfast, lunch, dinner and overnight windows
//
// Boundaries are computed on the local wall clock and converted to UTC only
// for comparison with persisted timestamps, so a business day that crosses a
// daylight-saving change is 23 or 25 hours long rather than a fixed UTC span.
//
// The next number in an epoch is the highest number already used inside the
// window plus one, or 1 for an empty epoch. EpochLocks serializes that
// read-then-insert per epoch within a process.
package numbering
