// Package recompute re-derives risk state across the whole dataset, used
// after model artifacts are retrained or heuristic rules change.
package recompute

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/maatrinet/maatrinet/internal/domain/maternity"
	"github.com/maatrinet/maatrinet/internal/risk"
)

// Summary reports one recompute run. Mean scores cover only the entities
// that were successfully rescored.
type Summary struct {
	Pregnancies       int
	Deliveries        int
	Children          int
	Failed            int
	HighRisk          int
	OfftrackChildren  int
	MeanPrebirthRisk  float64
	MeanPostbirthRisk float64
}

type Job struct {
	pregnancies maternity.PregnancyRepository
	deliveries  maternity.DeliveryRepository
	children    maternity.ChildRepository
	engine      *risk.Engine
	log         zerolog.Logger
}

func NewJob(p maternity.PregnancyRepository, d maternity.DeliveryRepository,
	c maternity.ChildRepository, engine *risk.Engine, log zerolog.Logger) *Job {
	return &Job{pregnancies: p, deliveries: d, children: c, engine: engine, log: log}
}

// Run rescores every pregnancy, delivery and child. A failed update is
// logged and counted; the entity keeps its previous derived state.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	var s Summary

	pregs, err := j.pregnancies.ListAll(ctx)
	if err != nil {
		return s, fmt.Errorf("list pregnancies: %w", err)
	}
	var preScores []float64
	for _, p := range pregs {
		pred := j.engine.PredictPrebirthRisk(p)
		if err := j.pregnancies.UpdateRisk(ctx, p.ID, pred.Score, string(pred.Level), pred.TopFactors); err != nil {
			s.Failed++
			j.log.Error().Err(err).Str("pregnancy_id", p.ID.String()).Msg("pregnancy rescore failed")
			continue
		}
		s.Pregnancies++
		preScores = append(preScores, pred.Score)
		if pred.Level == risk.LevelHigh {
			s.HighRisk++
		}
	}

	dels, err := j.deliveries.ListAll(ctx)
	if err != nil {
		return s, fmt.Errorf("list deliveries: %w", err)
	}
	var postScores []float64
	for _, d := range dels {
		pred := j.engine.PredictPostbirthRisk(d)
		if err := j.deliveries.UpdateRisk(ctx, d.ID, pred.Score, string(pred.Level), pred.TopFactors); err != nil {
			s.Failed++
			j.log.Error().Err(err).Str("delivery_id", d.ID.String()).Msg("delivery rescore failed")
			continue
		}
		s.Deliveries++
		postScores = append(postScores, pred.Score)
		if pred.Level == risk.LevelHigh {
			s.HighRisk++
		}
	}

	kids, err := j.children.ListAll(ctx)
	if err != nil {
		return s, fmt.Errorf("list children: %w", err)
	}
	for _, c := range kids {
		offtrack := j.engine.DetectOfftrack(c)
		if err := j.children.UpdateOfftrack(ctx, c.ID,
			c.ImmunizationsCompleted, c.ImmunizationsExpected, offtrack); err != nil {
			s.Failed++
			j.log.Error().Err(err).Str("child_id", c.ID.String()).Msg("child recheck failed")
			continue
		}
		s.Children++
		if offtrack {
			s.OfftrackChildren++
		}
	}

	if len(preScores) > 0 {
		s.MeanPrebirthRisk = stat.Mean(preScores, nil)
	}
	if len(postScores) > 0 {
		s.MeanPostbirthRisk = stat.Mean(postScores, nil)
	}

	j.log.Info().Int("pregnancies", s.Pregnancies).Int("deliveries", s.Deliveries).
		Int("children", s.Children).Int("failed", s.Failed).Int("high_risk", s.HighRisk).
		Float64("mean_prebirth_risk", s.MeanPrebirthRisk).
		Float64("mean_postbirth_risk", s.MeanPostbirthRisk).
		Msg("recompute finished")
	return s, nil
}
