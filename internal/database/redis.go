package database

import (
	"sync"

	"riveredge/pkg/cache"
	"riveredge/pkg/config"
	"riveredge/pkg/queue"
)

var (
	redisQueueInstance *queue.RedisQueue
	redisQueueOnce     sync.Once

	cacheInstance *cache.Cache
	cacheOnce     sync.Once
)

// GetRedisQueue 获取Redis事件队列的单例实例
func GetRedisQueue() *queue.RedisQueue {
	redisQueueOnce.Do(func() {
		cfg := config.GetConfig()
		redisQueueInstance = queue.NewRedisQueue(&queue.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix + ":queue",
		})
	})
	return redisQueueInstance
}

// CloseRedisQueue 关闭Redis队列连接
func CloseRedisQueue() error {
	if redisQueueInstance != nil {
		return redisQueueInstance.Close()
	}
	return nil
}

// GetCache 获取Redis缓存的单例实例
func GetCache() *cache.Cache {
	cacheOnce.Do(func() {
		cfg := config.GetConfig()
		cacheInstance = cache.NewCache(&cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return cacheInstance
}

// CloseCache 关闭Redis缓存连接
func CloseCache() error {
	if cacheInstance != nil {
		return cacheInstance.Close()
	}
	return nil
}
