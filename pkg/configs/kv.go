package configs

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultRedisDialTimeout 连接、读写 Redis 的默认超时.
const DefaultRedisDialTimeout = 5 * time.Second

// KVConfig 键值存储，仅在 judilibre.cache_token 开启时被使用.
type KVConfig struct {
	Type  string        `mapstructure:"type"  rule:"oneof=memory redis"`
	Redis RedisKVConfig `mapstructure:"redis"`
}

// RedisKVConfig kv.type=redis 时的连接参数.
type RedisKVConfig struct {
	Addr        string        `mapstructure:"addr"         rule:"hostname_port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"           rule:"min=0,max=15"`
	PoolSize    int           `mapstructure:"pool_size"    rule:"min=0"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.type", "memory")
	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.password", "")
	v.SetDefault("kv.redis.db", 0)
	v.SetDefault("kv.redis.pool_size", 10)
	v.SetDefault("kv.redis.dial_timeout", DefaultRedisDialTimeout)
}
