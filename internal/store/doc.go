// Package store remembers the last collected status of every monitor and
// publishes transitions between statuses.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Transition]: A change of status observed for one monitor
//
// Watch mode feeds every successful collection into a store so that a
// repository moving from building to complete or error can be reported
// once, instead of on every refresh. Subscribers receive transitions via
// channels with non-blocking sends (slow subscribers miss transitions
// rather than block collection).
package store
