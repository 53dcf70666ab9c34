/*
Package history keeps bounded, time ordered series of pool size and allocation
samples and computes time weighted averages over them.

Each series holds at most MaxHistoryLength samples. When full, the oldest
sample is dropped before a new one is appended, so the retained samples are
always the most recent ones in their original order.
*/
package history
