// Package schedule generates candidate viewing slots for one day.
package schedule

import "openhouse/internal/models"

// Generate tiles fixed-length candidates across the configured window,
// starting at StartTime. A candidate whose end lands exactly on EndTime is
// included; the first candidate that would overrun the window halts
// generation. Candidates carry no identity; ids are assigned when the
// administrator confirms the commit.
//
// Generate is pure: the same config always yields the same sequence and
// nothing is mutated.
func Generate(cfg models.SlotConfig) ([]models.Slot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var candidates []models.Slot
	for cur := cfg.StartTime; cur.Before(cfg.EndTime); {
		end := cur.AddMinutes(cfg.SlotLength)
		if cfg.EndTime.Before(end) {
			break
		}

		candidates = append(candidates, models.Slot{
			Date:       cfg.Date,
			Time:       cur,
			SlotLength: cfg.SlotLength,
		})
		cur = end
	}

	if len(candidates) == 0 {
		return nil, models.ErrEmptyWindow
	}

	return candidates, nil
}
