package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/internal/repository"
	"github.com/docbook/docbook-api/pkg/security"
)

const (
	listCacheKey = "doctors:list"
	listCacheTTL = 30 * time.Second
)

type Service struct {
	repo   repository.DoctorRepository
	hasher security.PasswordHasher
	cache  *cache.Cache
}

func NewService(repo repository.DoctorRepository, hasher security.PasswordHasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		cache:  cache.New(listCacheTTL, 5*time.Minute),
	}
}

func (s *Service) Add(ctx context.Context, req *model.AddDoctorRequest) (*model.Doctor, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	doctor := &model.Doctor{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Speciality:   req.Speciality,
		Degree:       req.Degree,
		Experience:   req.Experience,
		About:        req.About,
		Fees:         req.Fees,
		Address:      req.Address,
		Image:        req.Image,
		Available:    true,
		SlotsBooked:  model.SlotsBooked{},
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}

	s.cache.Delete(listCacheKey)
	return doctor, nil
}

// ListPublic returns the doctor roster for the patient-facing app: the
// email is stripped, slots_booked stays so clients can precompute slot
// grids. Served from a short-lived cache; the cached copies are never
// mutated by callers.
func (s *Service) ListPublic(ctx context.Context) ([]*model.Doctor, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]*model.Doctor, 0, len(doctors))
	for _, d := range doctors {
		copied := *d
		copied.Email = ""
		public = append(public, &copied)
	}

	s.cache.Set(listCacheKey, public, cache.DefaultExpiration)
	return public, nil
}

// ListAll returns the full roster for the admin panel (email included).
func (s *Service) ListAll(ctx context.Context) ([]*model.Doctor, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorProfileRequest) error {
	if err := s.repo.UpdateProfile(ctx, id, req); err != nil {
		return err
	}
	s.cache.Delete(listCacheKey)
	return nil
}

// ToggleAvailability flips the booking gate. slots_booked is untouched;
// existing appointments stay as they are.
func (s *Service) ToggleAvailability(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.ToggleAvailability(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(listCacheKey)
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
