package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches verified identity claims and public ticket
// listings. Both caches are best-effort: a miss or an error falls
// through to the authoritative source.
type ValkeyClient struct {
	client   *redis.Client
	tokenTTL time.Duration
	listTTL  time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TokenTTL time.Duration
	ListTTL  time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 5 * time.Minute
	}
	if cfg.ListTTL == 0 {
		cfg.ListTTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:   rdb,
		tokenTTL: cfg.TokenTTL,
		listTTL:  cfg.ListTTL,
	}, nil
}

// tokenKey hashes the raw bearer token so the token itself is never
// stored.
func tokenKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return "auth:token:" + hex.EncodeToString(hash[:])
}

// GetVerifiedEmail returns the cached email claim for a token, if any.
func (v *ValkeyClient) GetVerifiedEmail(ctx context.Context, token string) (string, error) {
	email, err := v.client.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("token not in cache")
	}
	if err != nil {
		return "", fmt.Errorf("cache lookup error: %w", err)
	}
	return email, nil
}

// SetVerifiedEmail caches a successful verification for the token TTL,
// which bounds how long a revoked token stays usable.
func (v *ValkeyClient) SetVerifiedEmail(ctx context.Context, token, email string) {
	v.client.Set(ctx, tokenKey(token), email, v.tokenTTL)
}

func listKey(page, pageSize int) string {
	return fmt.Sprintf("tickets:approved:%d:%d", page, pageSize)
}

// GetTicketListRaw returns the cached JSON body for an unfiltered
// approved-tickets page.
func (v *ValkeyClient) GetTicketListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	data, err := v.client.Get(ctx, listKey(page, pageSize)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("list not in cache")
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetTicketList stores a listing page with a short TTL.
func (v *ValkeyClient) SetTicketList(ctx context.Context, page, pageSize int, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	v.client.Set(ctx, listKey(page, pageSize), data, v.listTTL)
}

// InvalidateTicketLists drops all cached listing pages, called when a
// moderation action changes what the public can see.
func (v *ValkeyClient) InvalidateTicketLists(ctx context.Context) {
	iter := v.client.Scan(ctx, 0, "tickets:approved:*", 100).Iterator()
	for iter.Next(ctx) {
		v.client.Del(ctx, iter.Val())
	}
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
