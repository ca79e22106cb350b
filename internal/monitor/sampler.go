package monitor

import (
	"context"
	"log"
	"time"

	"github.com/structeye/internal/classifier"
	"github.com/structeye/internal/engine"
	"github.com/structeye/internal/models"
	"github.com/structeye/internal/sensor"
)

// Sampler drives the pipeline when no real ingestion source is attached: it
// generates a simulated reading on one ticker and checks the retrain schedule
// on another. Retraining runs off the request path by design.
type Sampler struct {
	engine          *engine.Engine
	store           *classifier.Store
	simulator       *sensor.Simulator
	kind            models.ClassifierKind
	sampleInterval  time.Duration
	retrainInterval time.Duration
	sampling        bool
	stopChan        chan struct{}
}

func NewSampler(eng *engine.Engine, store *classifier.Store, sim *sensor.Simulator, kind models.ClassifierKind, sampleInterval, retrainInterval time.Duration, sampling bool) *Sampler {
	return &Sampler{
		engine:          eng,
		store:           store,
		simulator:       sim,
		kind:            kind,
		sampleInterval:  sampleInterval,
		retrainInterval: retrainInterval,
		sampling:        sampling,
		stopChan:        make(chan struct{}),
	}
}

func (s *Sampler) Start() {
	if s.sampling {
		go s.sampleLoop()
	}
	go s.retrainLoop()
}

func (s *Sampler) Stop() {
	close(s.stopChan)
}

func (s *Sampler) sampleLoop() {
	ticker := time.NewTicker(s.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reading := s.simulator.Generate(time.Now())
			processed := s.engine.ProcessReading(context.Background(), reading)
			if processed.AlertLevel != models.AlertLevelNormal {
				log.Printf("Sampled reading %d: level=%s anomaly=%t dispatch=%s",
					processed.ID, processed.AlertLevel, processed.IsAnomaly, processed.Dispatch)
			}
		case <-s.stopChan:
			return
		}
	}
}

func (s *Sampler) retrainLoop() {
	ticker := time.NewTicker(s.retrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			action, err := s.store.RetrainIfDue(s.kind)
			if err != nil {
				log.Printf("Retrain check failed: %v", err)
				continue
			}
			if action == classifier.ActionTrained {
				log.Printf("Retrained %s model on schedule", s.kind)
			}
		case <-s.stopChan:
			return
		}
	}
}
