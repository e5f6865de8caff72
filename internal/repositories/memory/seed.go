package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
)

// FormSeed is one form definition in a seed file.
type FormSeed struct {
	CampaignID uint                `json:"campaign_id"`
	Policies   models.FormPolicies `json:"policies"`
	Questions  models.SnapshotSet  `json:"questions"`
}

// LoadSeed registers every form in a JSON array of FormSeed and returns how
// many were loaded. Nothing is registered when any entry is invalid.
func (s *Store) LoadSeed(r io.Reader) (int, error) {
	var seeds []FormSeed
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return 0, fmt.Errorf("failed to decode form seed: %w", err)
	}

	seen := make(map[uint]struct{}, len(seeds))
	for i, seed := range seeds {
		if seed.Policies.FormID == 0 {
			return 0, apperrors.InvalidArgumentf("seed entry %d has no form_id", i)
		}
		if _, dup := seen[seed.Policies.FormID]; dup {
			return 0, apperrors.InvalidArgumentf("form %d seeded twice", seed.Policies.FormID)
		}
		seen[seed.Policies.FormID] = struct{}{}
	}

	for _, seed := range seeds {
		s.PutForm(seed.CampaignID, seed.Policies, seed.Questions.All()...)
	}
	return len(seeds), nil
}

func (s *Store) LoadSeedFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open form seed: %w", err)
	}
	defer f.Close()
	return s.LoadSeed(f)
}
