package binding

import (
	"context"

	"github.com/avast/retry-go"
	"github.com/go-redis/redis"
	"github.com/hhkbp2/loadbench"
	"github.com/pkg/errors"
)

const (
	PropertyRedisAddr            = "redis.addr"
	PropertyRedisAddrDefault     = "127.0.0.1:6379"
	PropertyRedisPassword        = "redis.password"
	PropertyRedisPasswordDefault = ""
	PropertyRedisDB              = "redis.db"
	PropertyRedisDBDefault       = "0"
	PropertyRedisPoolSize        = "redis.poolsize"
	PropertyRedisPoolSizeDefault = "0"

	// The prefix of the sorted set holding the keys of one table.
	RedisIndexPrefix = "_indices:"
)

// RedisDB stores every record as a hash named by its table and key. The keys
// of each table are also kept in a sorted set with equal scores, so range
// scans follow the lexical key order.
type RedisDB struct {
	*loadbench.DBBase
	options *redis.Options
	client  *redis.Client
}

func NewRedisDB(p loadbench.Properties) (loadbench.DB, error) {
	db, err := parseInt(p, PropertyRedisDB, PropertyRedisDBDefault)
	if err != nil {
		return nil, err
	}
	poolSize, err := parseInt(p, PropertyRedisPoolSize, PropertyRedisPoolSizeDefault)
	if err != nil {
		return nil, err
	}
	return &RedisDB{
		DBBase: loadbench.NewDBBase(p),
		options: &redis.Options{
			Addr:     p.GetDefault(PropertyRedisAddr, PropertyRedisAddrDefault),
			Password: p.GetDefault(PropertyRedisPassword, PropertyRedisPasswordDefault),
			DB:       int(db),
			PoolSize: int(poolSize),
		},
	}, nil
}

func (self *RedisDB) Init(ctx context.Context) error {
	client := redis.NewClient(self.options)
	err := retry.Do(
		func() error {
			return client.WithContext(ctx).Ping().Err()
		},
		retry.Context(ctx),
		retry.Attempts(ConnectAttempts),
		retry.Delay(ConnectDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		client.Close()
		return errors.Wrapf(err, "fail to connect to redis at %s", self.options.Addr)
	}
	self.client = client
	return nil
}

func (self *RedisDB) Cleanup() error {
	if self.client != nil {
		return self.client.Close()
	}
	return nil
}

func indexKey(table string) string {
	return RedisIndexPrefix + table
}

func recordKey(table, key string) string {
	return table + ":" + key
}

func (self *RedisDB) Read(ctx context.Context, table string, key string, fields []string) (loadbench.KVMap, error) {
	client := self.client.WithContext(ctx)
	if len(fields) == 0 {
		values, err := client.HGetAll(recordKey(table, key)).Result()
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, loadbench.ErrNotFound
		}
		return loadbench.KVMap(values), nil
	}
	values, err := client.HMGet(recordKey(table, key), fields...).Result()
	if err != nil {
		return nil, err
	}
	ret := make(loadbench.KVMap, len(fields))
	for i, v := range values {
		if s, ok := v.(string); ok {
			ret[fields[i]] = s
		}
	}
	if len(ret) == 0 {
		return nil, loadbench.ErrNotFound
	}
	return ret, nil
}

func (self *RedisDB) Scan(ctx context.Context, table string, startKey string, recordCount int64, fields []string) ([]loadbench.KVMap, error) {
	if recordCount <= 0 {
		return nil, nil
	}
	keys, err := self.client.WithContext(ctx).ZRangeByLex(indexKey(table), redis.ZRangeBy{
		Min:   "[" + startKey,
		Max:   "+",
		Count: recordCount,
	}).Result()
	if err != nil {
		return nil, err
	}
	ret := make([]loadbench.KVMap, 0, len(keys))
	for _, key := range keys {
		record, err := self.Read(ctx, table, key, fields)
		if err == loadbench.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, record)
	}
	return ret, nil
}

func (self *RedisDB) Insert(ctx context.Context, table string, key string, values loadbench.KVMap) error {
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}
	_, err := self.client.WithContext(ctx).TxPipelined(func(pipe redis.Pipeliner) error {
		if len(fields) > 0 {
			pipe.HMSet(recordKey(table, key), fields)
		}
		pipe.ZAdd(indexKey(table), redis.Z{Score: 0, Member: key})
		return nil
	})
	return err
}
