package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"unipath-planner/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record() Record {
	return Record{
		ID: NewID(),
		Profile: models.Profile{
			Name:       "孙同学",
			University: "厦门大学",
			Major:      "会计学",
			Grade:      models.GradeSophomore,
		},
		Plan: models.Plan{
			Summary:               "稳扎稳打",
			SWOT:                  models.SWOT{Strengths: []string{"CPA 在考"}},
			ProductRecommendation: models.RecommendHarvest,
		},
		CreatedAt: time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Less(t, a, b, "ids are time ordered")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := record()

	_, err := s.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, r))
	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.NoError(t, s.Ping(ctx))
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	s := NewRedisStore(client, "")
	r := record()

	require.NoError(t, s.Save(ctx, r))
	assert.True(t, mr.Exists(DefaultKeyPrefix+r.ID))
	assert.Equal(t, time.Duration(0), mr.TTL(DefaultKeyPrefix+r.ID), "records never expire")

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Profile, got.Profile)
	assert.Equal(t, r.Plan, got.Plan)
	assert.True(t, r.CreatedAt.Equal(got.CreatedAt))

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Ping(ctx))
}

func TestRedisStore_CorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set("p:bad", "{not json"))
	_, err := NewRedisStore(client, "p:").Get(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestRedisStore_Mock(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedisStore(client, "plan:")
	r := record()
	data, err := json.Marshal(r)
	require.NoError(t, err)

	t.Run("save", func(t *testing.T) {
		mock.ExpectSet("plan:"+r.ID, data, 0).SetVal("OK")
		require.NoError(t, s.Save(context.Background(), r))
	})

	t.Run("save error", func(t *testing.T) {
		mock.ExpectSet("plan:"+r.ID, data, 0).SetErr(errors.New("READONLY"))
		assert.Error(t, s.Save(context.Background(), r))
	})

	t.Run("get miss", func(t *testing.T) {
		mock.ExpectGet("plan:nope").RedisNil()
		_, err := s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get hit", func(t *testing.T) {
		mock.ExpectGet("plan:" + r.ID).SetVal(string(data))
		got, err := s.Get(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
