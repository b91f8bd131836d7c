package ports

import "context"

// AnalyticsCache is a best-effort read-through cache. Get reports a hit by
// returning true; implementations must treat every cache failure as a miss.
type AnalyticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
}
