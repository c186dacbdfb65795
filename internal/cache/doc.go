// Package cache stores converted phonemes so repeated text skips the
// engine. It pairs an in-memory LRU (L1) with a compressed disk store (L2)
// that survives between runs.
package cache
