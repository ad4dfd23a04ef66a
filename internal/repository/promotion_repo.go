package repository

import (
	"context"
	"encoding/json"
	"time"

	"beautypos/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PromotionRepository interface {
	Create(ctx context.Context, p *model.Promotion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	// List returns the whole catalog, active or not. The discount engine
	// filters by activity and date itself.
	List(ctx context.Context) ([]model.Promotion, error)
	Update(ctx context.Context, p *model.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type promotionRepo struct{ db *gorm.DB }

func NewPromotionRepository(db *gorm.DB) PromotionRepository { return &promotionRepo{db: db} }

func (r *promotionRepo) Create(ctx context.Context, p *model.Promotion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *promotionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	var p model.Promotion
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *promotionRepo) List(ctx context.Context) ([]model.Promotion, error) {
	var list []model.Promotion
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *promotionRepo) Update(ctx context.Context, p *model.Promotion) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *promotionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Promotion{}, "id = ?", id).Error
}

// ── Redis-cached catalog ──────────────────────────────────────────────────────

const promotionCatalogKey = "promotions:catalog"

type cachedPromotionRepo struct {
	PromotionRepository
	rdb *redis.Client
	ttl time.Duration
}

// NewCachedPromotionRepository keeps the full catalog in redis so that every
// cart quote does not hit the database. Writes invalidate the cached copy.
// Redis failures fall through to the wrapped repository.
func NewCachedPromotionRepository(inner PromotionRepository, rdb *redis.Client, ttl time.Duration) PromotionRepository {
	if rdb == nil || ttl <= 0 {
		return inner
	}
	return &cachedPromotionRepo{PromotionRepository: inner, rdb: rdb, ttl: ttl}
}

func (r *cachedPromotionRepo) List(ctx context.Context) ([]model.Promotion, error) {
	if cached, err := r.rdb.Get(ctx, promotionCatalogKey).Bytes(); err == nil {
		var list []model.Promotion
		if jsonErr := json.Unmarshal(cached, &list); jsonErr == nil {
			return list, nil
		}
	}

	list, err := r.PromotionRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(list); jsonErr == nil {
		_ = r.rdb.Set(ctx, promotionCatalogKey, b, r.ttl).Err()
	}
	return list, nil
}

func (r *cachedPromotionRepo) Create(ctx context.Context, p *model.Promotion) error {
	if err := r.PromotionRepository.Create(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedPromotionRepo) Update(ctx context.Context, p *model.Promotion) error {
	if err := r.PromotionRepository.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedPromotionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.PromotionRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedPromotionRepo) invalidate(ctx context.Context) {
	if err := r.rdb.Del(ctx, promotionCatalogKey).Err(); err != nil {
		log.Warn().Err(err).Msg("promotion cache: invalidate failed")
	}
}
