package metrics

import (
	"sync/atomic"
	"time"
)

// TurnMetric describes one AI turn.
type TurnMetric struct {
	Candidates   int
	Executed     int
	Skipped      int
	HintFallback bool
	Duration     time.Duration
}

type AITurnMetric struct {
	Round int
	TurnMetric
}

type GameMetric struct {
	Winner     string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Rounds     int
	Evaluation float64 // Resource evaluation from the AI's perspective at game end
}

type Collector interface {
	Start()
	SetCandidates(n int)
	SetHintFallback(value bool)
	AddExecuted()
	AddSkipped()
	Complete() TurnMetric
}

type collector struct {
	startTime    time.Time
	candidates   atomic.Int32
	executed     atomic.Int32
	skipped      atomic.Int32
	hintFallback atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
	m.candidates.Store(0)
	m.executed.Store(0)
	m.skipped.Store(0)
	m.hintFallback.Store(false)
}

func (m *collector) SetCandidates(n int) {
	m.candidates.Store(int32(n))
}

func (m *collector) SetHintFallback(value bool) {
	m.hintFallback.Store(value)
}

func (m *collector) AddExecuted() {
	m.executed.Add(1)
}

func (m *collector) AddSkipped() {
	m.skipped.Add(1)
}

func (m *collector) Complete() TurnMetric {
	return TurnMetric{
		Candidates:   int(m.candidates.Load()),
		Executed:     int(m.executed.Load()),
		Skipped:      int(m.skipped.Load()),
		HintFallback: m.hintFallback.Load(),
		Duration:     time.Since(m.startTime),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                     {}
func (m *dummyCollector) SetCandidates(n int)        {}
func (m *dummyCollector) SetHintFallback(value bool) {}
func (m *dummyCollector) AddExecuted()               {}
func (m *dummyCollector) AddSkipped()                {}
func (m *dummyCollector) Complete() TurnMetric       { return TurnMetric{} }
