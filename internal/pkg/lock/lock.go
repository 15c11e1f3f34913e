// Package lock 基于 Redis SETNX 的分析互斥锁
package lock

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix = "analysis:lock:"
	// 锁默认 300 秒过期，分析进程崩溃后锁自动释放
	defaultLease = 300 * time.Second
)

// Manager 管理分析任务的互斥锁，key 由调用方保证唯一（用户 + 仓库）
type Manager struct {
	rdb   *redis.Client
	lease time.Duration
}

func NewManager(rdb *redis.Client) *Manager {
	return &Manager{rdb: rdb, lease: defaultLease}
}

// TryLock 尝试获取锁，已被占用返回 false
// Redis 不可用时也返回 false：宁可拒绝请求，不能让并发分析穿透
func (m *Manager) TryLock(ctx context.Context, key string) bool {
	ok, err := m.rdb.SetNX(ctx, keyPrefix+key, "locked", m.lease).Result()
	if err != nil {
		log.Printf("获取分析锁失败 key=%s: %v", key, err)
		return false
	}
	return ok
}

// Refresh 为长耗时分析续期，锁已过期时返回 false
func (m *Manager) Refresh(ctx context.Context, key string) bool {
	ok, err := m.rdb.Expire(ctx, keyPrefix+key, m.lease).Result()
	if err != nil {
		log.Printf("分析锁续期失败 key=%s: %v", key, err)
		return false
	}
	return ok
}

// Release 释放锁，幂等：锁不存在时不报错
func (m *Manager) Release(ctx context.Context, key string) error {
	return m.rdb.Del(ctx, keyPrefix+key).Err()
}

// IsLocked 查询锁是否被占用，查询失败按占用处理
func (m *Manager) IsLocked(ctx context.Context, key string) bool {
	n, err := m.rdb.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		log.Printf("查询分析锁失败 key=%s: %v", key, err)
		return true
	}
	return n > 0
}
