package service

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
)

// DirectivePublisher 把练习生成指令交给外部生成器
type DirectivePublisher interface {
	Publish(ctx context.Context, d Directive) error
}

// RedisDirectivePublisher 写入 Redis Stream，生成器以消费组方式读取
type RedisDirectivePublisher struct {
	Client *redis.Client
	Stream string
}

func NewRedisDirectivePublisher(client *redis.Client, stream string) *RedisDirectivePublisher {
	return &RedisDirectivePublisher{Client: client, Stream: stream}
}

func (p *RedisDirectivePublisher) Publish(ctx context.Context, d Directive) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return p.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.Stream,
		Values: map[string]interface{}{
			"id":      d.ID,
			"trigger": string(d.Trigger),
			"data":    data,
		},
	}).Err()
}

// NoopDirectivePublisher Redis 未启用时使用
type NoopDirectivePublisher struct{}

func (NoopDirectivePublisher) Publish(context.Context, Directive) error {
	return nil
}
