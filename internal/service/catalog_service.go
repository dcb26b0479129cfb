package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hyowon-dev/sugang-api/internal/models"
	appErrors "github.com/hyowon-dev/sugang-api/pkg/errors"
)

const departmentCacheKey = "catalog:departments"

type lectureLister interface {
	List(ctx context.Context, filter models.LectureFilter) ([]models.LectureDetail, error)
}

type departmentLister interface {
	List(ctx context.Context) ([]models.Department, error)
}

type professorLister interface {
	List(ctx context.Context, departmentCode string) ([]models.Professor, error)
}

// CatalogService serves the browsable lecture catalog. Department rows
// are term-setup data and cached in Redis; lecture occupancy is always
// read fresh so students see live seat counts.
type CatalogService struct {
	lectures    lectureLister
	departments departmentLister
	professors  professorLister
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewCatalogService constructs CatalogService. cache may be nil, in
// which case department lookups go straight to the store.
func NewCatalogService(lectures lectureLister, departments departmentLister, professors professorLister, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger, metrics *MetricsService) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		lectures:    lectures,
		departments: departments,
		professors:  professors,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		metrics:     metrics,
	}
}

// Departments returns the department list, cache-first.
func (s *CatalogService) Departments(ctx context.Context) ([]models.Department, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, departmentCacheKey).Bytes()
		if err == nil {
			var cached []models.Department
			if err := json.Unmarshal(raw, &cached); err == nil {
				s.metrics.RecordCacheOperation(true)
				return cached, nil
			}
		}
		s.metrics.RecordCacheOperation(false)
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}

	if s.cache != nil {
		if raw, err := json.Marshal(departments); err == nil {
			if err := s.cache.Set(ctx, departmentCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache departments", zap.Error(err))
			}
		}
	}

	return departments, nil
}

// Professors returns professors, optionally scoped to a department.
// The list drives the catalog's professor filter, so it reads straight
// from the store.
func (s *CatalogService) Professors(ctx context.Context, departmentCode string) ([]models.Professor, error) {
	professors, err := s.professors.List(ctx, departmentCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	if professors == nil {
		professors = []models.Professor{}
	}
	return professors, nil
}

// Lectures returns catalog entries matching the filter with live
// occupancy.
func (s *CatalogService) Lectures(ctx context.Context, filter models.LectureFilter) ([]models.LectureDetail, error) {
	lectures, err := s.lectures.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lectures")
	}
	if lectures == nil {
		lectures = []models.LectureDetail{}
	}
	return lectures, nil
}
