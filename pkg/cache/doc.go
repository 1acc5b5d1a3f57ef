// Package cache provides a bounded, thread-safe LRU map.
//
// The console keeps one import wizard per browser session in an LRU so
// abandoned wizards are evicted once capacity is reached.
//
//	wizards := cache.NewLRU[string, *Wizard](1000)
//	w := wizards.GetOrCreate(sessionID, newWizard)
package cache
