package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/visualstash/stash/internal/config"
	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/model"
)

const (
	recordKey       = "stash:record"
	prefViewModeKey = "stash:pref:view_mode"
	prefThemeKey    = "stash:pref:theme"
	changeChannel   = "stash:changes"

	redisOpTimeout = 3 * time.Second
)

// RedisStore implements Store on a redis server. The record is one JSON
// value; every write publishes the new record on a pub/sub channel, which
// is what drives Subscribe across processes.
type RedisStore struct {
	client   *redis.Client
	log      logger.Logger
	instance string // identifies this store so it can skip its own messages

	hub       hub
	cancelSub context.CancelFunc
	subOnce   sync.Once
	stopOnce  sync.Once
}

// RedisStoreParams holds parameters for creating a RedisStore.
type RedisStoreParams struct {
	Client *redis.Client
	Logger logger.Logger
}

// changeMessage is the pub/sub payload for a committed write.
type changeMessage struct {
	Instance string               `json:"instance"`
	Record   *model.StorageRecord `json:"record"`
}

// NewRedisStore creates a RedisStore on an established client.
func NewRedisStore(params RedisStoreParams) *RedisStore {
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &RedisStore{
		client:   params.Client,
		log:      log,
		instance: model.GenerateUUID(),
	}
}

// Read returns the persisted record, or a seeded default if the key is
// absent.
func (s *RedisStore) Read() (*model.StorageRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, recordKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewStorageRecord(), nil
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	var record model.StorageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	record.Normalize()
	return &record, nil
}

// Write replaces the record and publishes the change.
func (s *RedisStore) Write(record *model.StorageRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, recordKey, data, 0).Err(); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	msg, err := json.Marshal(changeMessage{Instance: s.instance, Record: record})
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, changeChannel, msg).Err(); err != nil {
		// The write itself succeeded; other processes will still converge
		// on their next read. Local subscribers are notified below.
		s.log.Warn("publish change failed", logger.Error(err))
	}

	s.hub.notify(record)
	return nil
}

// Subscribe registers a change callback. The first subscription starts the
// pub/sub listener for writes from other processes.
func (s *RedisStore) Subscribe(fn func(*model.StorageRecord)) (cancel func()) {
	s.subOnce.Do(func() {
		ctx, cancelCtx := context.WithCancel(context.Background())
		s.cancelSub = cancelCtx
		go s.listen(ctx)
	})
	return s.hub.subscribe(fn)
}

// Close stops the pub/sub listener and closes the client.
func (s *RedisStore) Close() error {
	s.stopOnce.Do(func() {
		if s.cancelSub != nil {
			s.cancelSub()
		}
	})
	return s.client.Close()
}

func (s *RedisStore) listen(ctx context.Context) {
	pubsub := s.client.Subscribe(ctx, changeChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var change changeMessage
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				s.log.Warn("bad change message", logger.Error(err))
				continue
			}
			if change.Instance == s.instance || change.Record == nil {
				// Own write; local subscribers were already notified.
				continue
			}
			change.Record.Normalize()
			s.hub.notify(change.Record)
		}
	}
}

// ReadPrefs reads the view preferences from their scalar keys.
func (s *RedisStore) ReadPrefs() (Prefs, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	prefs := DefaultPrefs()
	if v, err := s.client.Get(ctx, prefViewModeKey).Result(); err == nil && v != "" {
		prefs.ViewMode = v
	}
	if v, err := s.client.Get(ctx, prefThemeKey).Result(); err == nil && v != "" {
		prefs.Theme = v
	}
	return prefs, nil
}

// WritePrefs stores the view preferences under their scalar keys.
func (s *RedisStore) WritePrefs(p Prefs) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, prefViewModeKey, p.ViewMode, 0).Err(); err != nil {
		return err
	}
	return s.client.Set(ctx, prefThemeKey, p.Theme, 0).Err()
}

// Connect establishes a redis client, retrying with exponential backoff for
// a short window so a daemon starting alongside redis doesn't flap.
func Connect(cfg config.RedisConfig, log logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	const connectTimeout = 15 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	wait := 500 * time.Millisecond
	attempt := 0
	for {
		attempt++
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected to redis after retry",
					logger.String("addr", cfg.Addr),
					logger.Int("attempts", attempt))
			} else {
				log.Info("connected to redis", logger.String("addr", cfg.Addr))
			}
			return client, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			client.Close()
			return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", cfg.Addr, attempt, err)
		case <-timer.C:
			log.Warn("redis connection failed, retrying",
				logger.String("addr", cfg.Addr),
				logger.Int("attempt", attempt),
				logger.Duration("next_retry_in", wait),
				logger.Error(err))
			wait *= 2
			if wait > 4*time.Second {
				wait = 4 * time.Second
			}
		}
	}
}
