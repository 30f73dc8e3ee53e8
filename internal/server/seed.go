package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/seed"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// SeedHunts creates every hunt that does not exist yet. Existing hunts are
// left untouched, so running it on every start is safe.
func SeedHunts(ctx context.Context, logger *slog.Logger, store huntstore.Store, hunts []seed.Hunt) error {
	for _, sh := range hunts {
		state, err := treasurehunt.NewState(sh.Setup())
		if err != nil {
			return fmt.Errorf("seeding hunt %s: %w", sh.ID, err)
		}
		_, err = store.CreateHunt(ctx, sh.ID, state)
		if errors.Is(err, huntstore.ErrExists) {
			logger.Debug("hunt already seeded", "hunt", sh.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("seeding hunt %s: %w", sh.ID, err)
		}
		logger.Info("hunt seeded", "hunt", sh.ID, "qr_codes", len(state.QRCodes))
	}
	return nil
}
