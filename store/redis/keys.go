package redis

// Key prefix for cached event blobs.
const prefixEvent = "huddle:evt:"

// Sorted set of cached event IDs scored by start time.
const zEventDate = "huddle:z:evt:date"

// entityKey returns the primary key for an entity.
func entityKey(prefix, id string) string {
	return prefix + id
}
