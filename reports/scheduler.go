// Package reports implements the single scheduled-report task: a daily
// summary broadcast per Agency, handed to an external output channel.
// Grounded on pkg/msgworker's ticker-driven sweep loop style and
// dustin/go-humanize for the broadcast text.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	deliveryapp "github.com/doualaexpress/deligate/delivery/application"
	"github.com/doualaexpress/deligate/pkg/timeutils"
	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

// OutboundChannel is the narrow interface the scheduler needs from an
// external output channel; whatsapp.OutboundSender satisfies it via its
// SendConfirmation method's identical signature.
type OutboundChannel interface {
	SendConfirmation(ctx context.Context, externalGroupID, text string) error
}

type Scheduler struct {
	Deliveries *deliveryapp.Service
	Agencies tenant.AgencyRepository
	Groups tenant.GroupRepository
	Outbound OutboundChannel
	Location *time.Location
	ReportTime string // HH:MM, local to Location
	Enabled bool
}

func New(deliveries *deliveryapp.Service, agencies tenant.AgencyRepository, groups tenant.GroupRepository, outbound OutboundChannel, loc *time.Location, reportTime string, enabled bool) *Scheduler {
	return &Scheduler{
		Deliveries: deliveries,
		Agencies: agencies,
		Groups: groups,
		Outbound: outbound,
		Location: loc,
		ReportTime: reportTime,
		Enabled: enabled,
	}
}

// Run polls once a minute until ctx is cancelled, firing Broadcast whenever
// the wall clock matches ReportTime. One process runs exactly one of these.
func (s *Scheduler) Run(ctx context.Context) {
	if !s.Enabled {
		logrus.Info("[REPORTS] scheduled report disabled")
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if timeutils.MatchesMinute(now, s.Location, s.ReportTime) {
				s.Broadcast(ctx)
			}
		}
	}
}

// Broadcast computes daily_stats per active Agency and sends one summary
// to each of the agency's active Groups, maintaining tenant isolation:
// an agency's report text is only ever built from its own scoped stats.
func (s *Scheduler) Broadcast(ctx context.Context) {
	agencies, err := s.Agencies.ListActiveNonSuperAdmin(ctx)
	if err != nil {
		logrus.WithError(err).Error("[REPORTS] failed to list agencies")
		return
	}

	for _, agency := range agencies {
		scope := tenant.AgencyScope(agency.ID)
		stats, err := s.Deliveries.DailyStats(ctx, nil, nil, scope)
		if err != nil {
			logrus.WithError(err).Errorf("[REPORTS] daily_stats failed for agency %d", agency.ID)
			continue
		}

		text := formatSummary(agency.Name, stats.Total, stats.CollectedSum, stats.RemainingSum, stats.DueSum)

		groups, err := s.Groups.List(ctx, scope)
		if err != nil {
			logrus.WithError(err).Errorf("[REPORTS] failed to list groups for agency %d", agency.ID)
			continue
		}
		for _, group := range groups {
			if !group.Active {
				continue
			}
			if err := s.Outbound.SendConfirmation(ctx, group.ExternalGroupID, text); err != nil {
				logrus.WithError(err).Warnf("[REPORTS] failed to broadcast to group %s", group.ExternalGroupID)
			}
		}
	}
}

func formatSummary(agencyName string, total int, collected, remaining, due int64) string {
	return fmt.Sprintf(
		"Rapport du jour - %s\nLivraisons: %d\nEncaisse: %s\nRestant du: %s\nTotal du: %s",
		agencyName, total,
		humanize.Comma(collected),
		humanize.Comma(remaining),
		humanize.Comma(due),
	)
}
