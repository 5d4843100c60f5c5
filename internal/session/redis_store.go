package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/afc-labs/facturas-service/internal/config"
	"github.com/afc-labs/facturas-service/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	sessionKeyPrefix = "session:"
	flashKeyPrefix   = "flashes:"
)

// RedisStore es el almacén de sesiones respaldado por Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisStore establece la conexión a Redis y retorna el almacén
func NewRedisStore(cfg *config.Config, logger *logrus.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error pinging Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    cfg.Auth.SessionTTL,
		logger: logger,
	}, nil
}

// Create abre una sesión nueva con el TTL configurado
func (s *RedisStore) Create(ctx context.Context) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKeyPrefix+token, "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}
	return token, nil
}

// Valid indica si el token corresponde a una sesión vigente
func (s *RedisStore) Valid(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	exists, err := s.client.Exists(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		s.logger.WithError(err).Warn("Error checking session in Redis")
		return false
	}
	return exists > 0
}

// Delete cierra la sesión y descarta sus flashes pendientes
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token, flashKeyPrefix+token).Err()
}

// PushFlash encola un mensaje flash de la sesión
func (s *RedisStore) PushFlash(ctx context.Context, token string, flash models.Flash) error {
	data, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("error marshaling flash: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, flashKeyPrefix+token, data)
	pipe.Expire(ctx, flashKeyPrefix+token, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// PopFlashes retorna y vacía los mensajes pendientes de la sesión
func (s *RedisStore) PopFlashes(ctx context.Context, token string) ([]models.Flash, error) {
	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, flashKeyPrefix+token, 0, -1)
	pipe.Del(ctx, flashKeyPrefix+token)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	values, err := items.Result()
	if err != nil {
		return nil, err
	}

	flashes := make([]models.Flash, 0, len(values))
	for _, value := range values {
		var flash models.Flash
		if err := json.Unmarshal([]byte(value), &flash); err != nil {
			s.logger.WithError(err).Warn("Skipping malformed flash entry")
			continue
		}
		flashes = append(flashes, flash)
	}
	return flashes, nil
}

// Close cierra la conexión a Redis
func (s *RedisStore) Close() error {
	return s.client.Close()
}
