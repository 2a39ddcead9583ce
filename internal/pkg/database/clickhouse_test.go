package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClickHouseDBNilConnection(t *testing.T) {
	db := &ClickHouseDB{Conn: nil}

	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestRedisDBNilClient(t *testing.T) {
	db := &RedisDB{Client: nil}

	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
