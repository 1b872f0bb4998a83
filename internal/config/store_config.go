package config

import "github.com/spf13/viper"

const (
	redisAddrVar     = "REDIS_ADDR"
	redisPasswordVar = "REDIS_PASSWORD"
	redisDBVar       = "REDIS_DB"
)

// StoreConfig selects the pending authorization backend. An empty address keeps it in memory.
type StoreConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Store struct {
	v *viper.Viper
}

var _ StoreConfig = Store{}

func (s Store) GetRedisAddr() string {
	return s.v.GetString(redisAddrVar)
}

func (s Store) GetRedisPassword() string {
	return s.v.GetString(redisPasswordVar)
}

func (s Store) GetRedisDB() int {
	return s.v.GetInt(redisDBVar)
}
