package redisstore

import "fmt"

// Redis key pattern helpers
//
// All keys are namespaced by instance so several programs can share one
// Redis server.
//
// Key pattern: player:{instance}:{entity}:{id}

// RecordKey returns the hash holding one record.
// Pattern: player:{instance}:record:{key}
func RecordKey(instance, key string) string {
	return fmt.Sprintf("player:%s:record:%s", instance, key)
}

// KindKey returns the set of record keys of one kind.
// Pattern: player:{instance}:kind:{kind}
func KindKey(instance, kind string) string {
	return fmt.Sprintf("player:%s:kind:%s", instance, kind)
}

// DependentsKey returns the set of record keys of one kind under a parent.
// Pattern: player:{instance}:dependents:{parent}:{kind}
func DependentsKey(instance, parent, kind string) string {
	return fmt.Sprintf("player:%s:dependents:%s:%s", instance, parent, kind)
}

// HoldingsKey returns the set of mints an actor holds.
// Pattern: player:{instance}:holdings:{actor}
func HoldingsKey(instance, actor string) string {
	return fmt.Sprintf("player:%s:holdings:%s", instance, actor)
}
