package compare

import "strings"

// Cache memoizes classification results across items and invocations. It is
// owned by the caller, who controls its lifetime and may discard it between
// unrelated estimates. Classification is stable for a given input, so the
// cache never needs invalidation. A Cache is not safe for concurrent use.
type Cache struct {
	entries map[string]ClassificationResult
}

// NewCache creates an empty classification cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]ClassificationResult)}
}

// Len returns the number of memoized classifications.
func (c *Cache) Len() int {
	return len(c.entries)
}

// cacheKey is a composite of every field classification depends on. The item
// ID is deliberately excluded so identical lines share an entry.
func cacheKey(item LineItem) string {
	hours := ""
	if item.LaborHours != nil {
		hours = item.LaborHours.String()
	}
	return strings.Join([]string{item.Description, item.Operation, item.PartNumber, hours, item.PartCategory}, "|")
}

func (c *Cache) get(item LineItem) (ClassificationResult, bool) {
	result, ok := c.entries[cacheKey(item)]
	return result, ok
}

func (c *Cache) put(item LineItem, result ClassificationResult) {
	stored := result
	stored.ItemID = ""
	c.entries[cacheKey(item)] = stored
}
