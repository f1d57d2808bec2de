package forecast

import (
	"context"
	"fmt"
	"strings"

	"github.com/pwielgus/cashplan/internal/budget"
)

// Alerts derives risk signals from a 14-day projection plus live commitment
// state, all read from one snapshot: the first projected negative day, every
// overdue critical or due-within-48h unfunded bill, the first buffer breach,
// and an info line per upcoming day with activity.
func (s *service) Alerts(ctx context.Context) ([]budget.Alert, error) {
	alerts := make([]budget.Alert, 0)
	err := s.store.InTx(ctx, func(st budget.Store) error {
		snap, err := s.load(ctx, st)
		if err != nil {
			return err
		}
		projection := s.project(snap, alertHorizonDays, nil)

		for _, day := range projection {
			if day.Balance.IsNegative() {
				alerts = append(alerts, budget.Alert{
					Severity: budget.SeverityCritical,
					Message:  fmt.Sprintf("Projected balance goes negative ($%s) on %s", day.Balance.StringFixed(2), day.Date),
					Action:   "Move money from savings or defer a flexible bill",
				})
				break
			}
		}

		now := s.now()
		for _, c := range snap.commitments {
			if c.Direction != budget.DirectionBill || c.Paid {
				continue
			}
			inst, hasInst := snap.instances[instanceKey{c.ID, c.DueDate.String()}]
			if hasInst && inst.Status == budget.StatusFunded {
				continue
			}
			remaining := c.Amount
			if hasInst {
				remaining = inst.Remaining()
			}
			hoursUntil := c.DueDate.Time().Sub(now).Hours()
			switch {
			case hoursUntil < 0 && c.Priority == budget.PriorityCritical:
				alerts = append(alerts, budget.Alert{
					Severity: budget.SeverityCritical,
					Message:  fmt.Sprintf("Overdue critical bill: %s ($%s remaining)", c.Name, remaining.StringFixed(2)),
					Action:   fmt.Sprintf("Pay %s immediately", c.Name),
				})
			case hoursUntil >= 0 && hoursUntil <= dueSoonHours && !c.Autopay:
				alerts = append(alerts, budget.Alert{
					Severity: budget.SeverityCritical,
					Message:  fmt.Sprintf("%s ($%s remaining) due within 48 hours", c.Name, remaining.StringFixed(2)),
					Action:   fmt.Sprintf("Schedule payment for %s", c.Name),
				})
			}
		}

		for _, day := range projection {
			if day.Balance.IsPositive() && day.Balance.LessThan(bufferThreshold) {
				alerts = append(alerts, budget.Alert{
					Severity: budget.SeverityWarning,
					Message:  fmt.Sprintf("Balance drops below $%s buffer on %s ($%s)", bufferThreshold.StringFixed(0), day.Date, day.Balance.StringFixed(2)),
					Action:   "Review upcoming flexible expenses to defer",
				})
				break
			}
		}

		for i, day := range projection {
			if i >= 4 {
				break
			}
			if len(day.Occurrences) == 0 {
				continue
			}
			parts := make([]string, 0, len(day.Occurrences))
			for _, occ := range day.Occurrences {
				parts = append(parts, fmt.Sprintf("%s ($%s)", occ.Name, occ.Amount.StringFixed(2)))
			}
			alerts = append(alerts, budget.Alert{
				Severity: budget.SeverityInfo,
				Message:  fmt.Sprintf("%s: %s", day.Date, strings.Join(parts, ", ")),
				Action:   "Review upcoming transactions",
			})
		}
		return nil
	})
	return alerts, err
}
