// Package redisdb manages the process-wide redis clients backing the online
// store. The go-redis client pools connections internally and is safe for
// concurrent use.
package redisdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct {
	Name   string
	Addr   string
	Client *redis.Client
}

var redisInstances sync.Map

func (r *Redis) Init(password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return err
	}

	r.Client = client
	return nil
}

// RegisterRedis connects and registers a named redis client. Registering an
// existing name is a no-op.
func RegisterRedis(name, addr, password string, db int) error {
	if _, ok := redisInstances.Load(name); ok {
		return nil
	}
	r := &Redis{Name: name, Addr: addr}
	if err := r.Init(password, db); err != nil {
		return fmt.Errorf("register redis %s: %w", name, err)
	}
	redisInstances.Store(name, r)
	return nil
}

// RegisterRedisClient registers an already-constructed client, used by tests.
func RegisterRedisClient(name string, client *redis.Client) {
	redisInstances.Store(name, &Redis{Name: name, Client: client})
}

func GetRedis(name string) (*Redis, error) {
	value, ok := redisInstances.Load(name)
	if !ok {
		return nil, fmt.Errorf("redis not found, name:%s", name)
	}
	r, ok := value.(*Redis)
	if !ok {
		return nil, fmt.Errorf("redis not found, name:%s", name)
	}
	return r, nil
}

func RemoveRedis(name string) {
	value, ok := redisInstances.Load(name)
	if !ok {
		return
	}
	if r, ok := value.(*Redis); ok && r.Client != nil {
		r.Client.Close()
	}
	redisInstances.Delete(name)
}
