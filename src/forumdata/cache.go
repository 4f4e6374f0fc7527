package forumdata

import (
	"context"

	"git.mbbs.network/mbbs/mbbs/src/cache"
	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/models"
)

const DefaultThreadCacheCapacity = 1000

/*
ThreadCache is a read-through LRU over thread rows for hot paths like view
counting. The owning service must call Invalidate after every write to a
thread, or readers will see the stale row until eviction.

Safe for concurrent use. Fetch hands out copies, so mutating a returned
thread never corrupts the cache.
*/
type ThreadCache struct {
	lru *cache.LRU[int, models.Thread]
}

func NewThreadCache(capacity int) *ThreadCache {
	if capacity <= 0 {
		capacity = DefaultThreadCacheCapacity
	}
	return &ThreadCache{lru: cache.NewLRU[int, models.Thread](capacity)}
}

func (c *ThreadCache) Fetch(ctx context.Context, dbConn db.ConnOrTx, threadID int) (*models.Thread, error) {
	if thread, ok := c.lru.Get(threadID); ok {
		return &thread, nil
	}

	thread, err := FetchThread(ctx, dbConn, threadID)
	if err != nil {
		return nil, err
	}
	c.lru.Put(threadID, *thread)

	result := *thread
	return &result, nil
}

func (c *ThreadCache) Invalidate(threadID int) {
	c.lru.Invalidate(threadID)
}
