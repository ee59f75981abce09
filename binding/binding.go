package binding

import (
	"strconv"

	"github.com/hhkbp2/loadbench"
)

// AddBindings registers every database binding of this package.
func AddBindings() {
	loadbench.RegisterDB("mysql", NewMysqlDB)
	loadbench.RegisterDB("postgres", NewPostgresDB)
	loadbench.RegisterDB("sqlite", NewSqliteDB)
	loadbench.RegisterDB("redis", NewRedisDB)
	loadbench.RegisterDB("memory", NewMemoryDB)
}

func parseBool(p loadbench.Properties, key, defaultValue string) (bool, error) {
	propStr := p.GetDefault(key, defaultValue)
	v, err := strconv.ParseBool(propStr)
	if err != nil {
		return false, loadbench.NewConfigError(key, propStr, err)
	}
	return v, nil
}

func parseInt(p loadbench.Properties, key, defaultValue string) (int64, error) {
	propStr := p.GetDefault(key, defaultValue)
	v, err := strconv.ParseInt(propStr, 0, 64)
	if err != nil {
		return 0, loadbench.NewConfigError(key, propStr, err)
	}
	return v, nil
}
