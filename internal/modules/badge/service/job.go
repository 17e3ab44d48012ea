package service

import (
	"context"

	"go.uber.org/zap"
)

// WeeklyStarJob awards the weekly star on a schedule, so the week's top receiver
// gets it even when nobody sends kudos after they took the lead.
type WeeklyStarJob struct {
	svc      BadgeService
	schedule string
	log      *zap.Logger
}

func NewWeeklyStarJob(svc BadgeService, schedule string, log *zap.Logger) *WeeklyStarJob {
	return &WeeklyStarJob{svc: svc, schedule: schedule, log: log.Named("weekly_star")}
}

func (j *WeeklyStarJob) Name() string {
	return "weekly_star"
}

func (j *WeeklyStarJob) Schedule() string {
	return j.schedule
}

func (j *WeeklyStarJob) Run(ctx context.Context) error {
	userID, badges, err := j.svc.AwardWeeklyStar(ctx)
	if err != nil {
		return err
	}
	j.log.Info("weekly star evaluated",
		zap.String("top_receiver", userID.String()),
		zap.Int("new_badges", len(badges)),
	)
	return nil
}
