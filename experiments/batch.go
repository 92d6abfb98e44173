package experiments

import (
	"context"
	"sync"

	"conquest/advisor"
	"conquest/experiments/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type job struct {
	index  int
	config metrics.AgentConfig
	seed   uint64
}

type outcome struct {
	game  metrics.GameRecord
	turns []metrics.TurnRecord
	err   error
}

// runBatch plays every job on a pool of workers. Records come back in job
// order regardless of completion order.
func runBatch(ctx context.Context, jobs []job, workers, maxTurns int, adv advisor.Advisor, fallbackHint string) ([]metrics.GameRecord, []metrics.TurnRecord, error) {
	if workers < 1 {
		workers = 1
	}
	task := make(chan job, len(jobs))
	for _, j := range jobs {
		task <- j
	}
	close(task)

	outcomes := make([]outcome, len(jobs))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := range task {
				if ctx.Err() != nil {
					outcomes[j.index] = outcome{err: ctx.Err()}
					continue
				}
				id := uuid.NewString()
				gameMetric, turnMetrics, err := RunGame(ctx, j.config, j.seed, maxTurns, adv, fallbackHint)
				o := outcome{
					game: metrics.GameRecord{ID: id, Agent: j.config.ID, Seed: j.seed, GameMetric: gameMetric},
					err:  err,
				}
				for _, tm := range turnMetrics {
					o.turns = append(o.turns, metrics.TurnRecord{Game: id, AITurnMetric: tm})
				}
				outcomes[j.index] = o
				log.Info().Str("game", id).Int("agent", j.config.ID).Str("winner", gameMetric.Winner).Int("rounds", gameMetric.Rounds).Msg("completed game")
			}
		}()
	}
	wg.Wait()

	gameRecords := []metrics.GameRecord{}
	turnRecords := []metrics.TurnRecord{}
	for _, o := range outcomes {
		if o.err != nil {
			return gameRecords, turnRecords, o.err
		}
		gameRecords = append(gameRecords, o.game)
		turnRecords = append(turnRecords, o.turns...)
	}
	return gameRecords, turnRecords, nil
}
