package jobs

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/config"
)

func init() {
	Register("reservation-stats", reservationStats{})
}

// reservationStats refreshes the reservation count gauge.
type reservationStats struct{}

var _ Runner = reservationStats{}

// Spec implements Runner.
func (reservationStats) Spec(ctx context.Context) string {
	cfg := config.FromContext(ctx)
	return cfg.Jobs.ReservationStats
}

// Run implements Runner.
func (reservationStats) Run(ctx context.Context) error {
	be := backend.FromContext(ctx)
	n, err := be.RefreshReservationStats(ctx)
	if err != nil {
		return err
	}

	log.FromContext(ctx).WithPrefix("jobs.reservation-stats").Debug("refreshed", "reservations", n)
	return nil
}
