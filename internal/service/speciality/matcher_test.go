package speciality

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbook/docbook-api/internal/model"
	apperrors "github.com/docbook/docbook-api/pkg/errors"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"I have a fever and chills", GeneralPhysician},
		{"bad acne on my face", Dermatologist},
		{"HAIR LOSS getting worse", Dermatologist},
		{"irregular period for two months", Gynecologist},
		{"my child has a fever", Pediatrician},
		{"constant headache and dizziness", Neurologist},
		{"stomach pain and acidity", Gastroenterologist},
		{"something vague", GeneralPhysician},
		{"", GeneralPhysician},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.text), "text: %q", tt.text)
	}
}

type stubDoctorRepo struct {
	bySpeciality map[string][]*model.Doctor
}

func (s *stubDoctorRepo) Create(context.Context, *model.Doctor) error { return nil }
func (s *stubDoctorRepo) Get(context.Context, uuid.UUID) (*model.Doctor, error) {
	return nil, apperrors.NotFound("doctor")
}
func (s *stubDoctorRepo) GetByEmail(context.Context, string) (*model.Doctor, error) {
	return nil, apperrors.NotFound("doctor")
}
func (s *stubDoctorRepo) List(context.Context) ([]*model.Doctor, error) { return nil, nil }
func (s *stubDoctorRepo) ListAvailableBySpeciality(_ context.Context, speciality string) ([]*model.Doctor, error) {
	return s.bySpeciality[speciality], nil
}
func (s *stubDoctorRepo) UpdateProfile(context.Context, uuid.UUID, *model.UpdateDoctorProfileRequest) error {
	return nil
}
func (s *stubDoctorRepo) ToggleAvailability(context.Context, uuid.UUID) error { return nil }
func (s *stubDoctorRepo) Count(context.Context) (int, error)                  { return 0, nil }

func TestMatchDoctors(t *testing.T) {
	repo := &stubDoctorRepo{bySpeciality: map[string][]*model.Doctor{
		Dermatologist: {
			{Name: "Dr. Skin", Email: "skin@docbook.dev", Speciality: Dermatologist, Available: true},
		},
	}}
	svc := NewService(repo)

	spec, doctors, err := svc.MatchDoctors(context.Background(), "itching rash on arm")
	require.NoError(t, err)

	assert.Equal(t, Dermatologist, spec)
	require.Len(t, doctors, 1)
	assert.Empty(t, doctors[0].Email)
}

func TestMatchDoctorsEmptyText(t *testing.T) {
	svc := NewService(&stubDoctorRepo{})

	_, _, err := svc.MatchDoctors(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
