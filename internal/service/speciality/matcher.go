package speciality

import (
	"context"
	"strings"

	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/internal/repository"
	apperrors "github.com/docbook/docbook-api/pkg/errors"
)

// The platform's specialities.
const (
	GeneralPhysician   = "General physician"
	Dermatologist      = "Dermatologist"
	Gynecologist       = "Gynecologist"
	Pediatrician       = "Pediatricians"
	Neurologist        = "Neurologist"
	Gastroenterologist = "Gastroenterologist"
)

type rule struct {
	keywords   []string
	speciality string
}

// rules route free-text symptom phrases to a speciality, checked in
// order: specialist vocabularies first so "child fever" reaches the
// pediatrician, not the general physician. No match falls back to the
// general physician.
var rules = []rule{
	{
		keywords:   []string{"child", "kid", "infant", "vaccination", "growth"},
		speciality: Pediatrician,
	},
	{
		keywords:   []string{"acne", "pimple", "skin", "rash", "hair loss", "itching", "eczema", "dandruff", "nail"},
		speciality: Dermatologist,
	},
	{
		keywords:   []string{"pregnancy", "menstrual", "period", "pcod", "pcos", "fertility", "menopause"},
		speciality: Gynecologist,
	},
	{
		keywords:   []string{"headache", "migraine", "dizziness", "seizure", "numbness", "tingling", "memory", "vertigo"},
		speciality: Neurologist,
	},
	{
		keywords:   []string{"stomach", "acidity", "heartburn", "constipation", "diarrhea", "bloating", "liver", "nausea", "vomiting", "digestive"},
		speciality: Gastroenterologist,
	},
	{
		keywords:   []string{"fever", "chills", "cold", "cough", "body ache", "fatigue", "weakness", "checkup", "diabetes", "blood pressure"},
		speciality: GeneralPhysician,
	},
}

// Match maps a free-text symptom description to a speciality.
func Match(text string) string {
	lowered := strings.ToLower(text)
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(lowered, keyword) {
				return r.speciality
			}
		}
	}
	return GeneralPhysician
}

type Service struct {
	doctors repository.DoctorRepository
}

func NewService(doctors repository.DoctorRepository) *Service {
	return &Service{doctors: doctors}
}

// MatchDoctors resolves the speciality for a symptom description and
// returns the currently available doctors of that speciality.
func (s *Service) MatchDoctors(ctx context.Context, text string) (string, []*model.Doctor, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil, apperrors.Validation("symptom description is required")
	}

	spec := Match(text)
	doctors, err := s.doctors.ListAvailableBySpeciality(ctx, spec)
	if err != nil {
		return "", nil, err
	}

	for _, d := range doctors {
		d.Email = ""
	}
	return spec, doctors, nil
}
