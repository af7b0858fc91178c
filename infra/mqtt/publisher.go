package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/gridwarden/core/logger"
	coremetrics "github.com/kilianp07/gridwarden/core/metrics"
	"github.com/kilianp07/gridwarden/core/model"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// ResultPublisher publishes simulation results as JSON to an MQTT broker so
// dashboards can follow a run hour by hour.
//
// Topics:
//
//	<prefix>/<scenario>/<policy>/hour     one message per simulated hour
//	<prefix>/<scenario>/<policy>/summary  one message per finished run
//	<prefix>/comparison                   one message per policy comparison
//	<prefix>/status                       retained online/offline marker
type ResultPublisher struct {
	cli     pahoClient
	cfg     Config
	log     logger.Logger
	backoff time.Duration
}

// NewResultPublisher connects to the broker described by cfg.
func NewResultPublisher(cfg Config, log logger.Logger) (*ResultPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	p := &ResultPublisher{
		cfg:     cfg,
		log:     log,
		backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		if token := c.Publish(cfg.StatusTopic(), cfg.QoS, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	p.cli = c
	return p, nil
}

type hourPayload struct {
	RunID          string    `json:"run_id"`
	Scenario       string    `json:"scenario"`
	Policy         string    `json:"policy"`
	Hour           int       `json:"hour"`
	Time           time.Time `json:"time"`
	TotalLoadMW    float64   `json:"total_load_mw"`
	EVLoadMW       float64   `json:"ev_load_mw"`
	AmbientC       float64   `json:"ambient_c"`
	LoadingPercent float64   `json:"loading_percent"`
	VoltagePU      float64   `json:"voltage_pu"`
	Collapsed      bool      `json:"collapsed"`
	TopOilRiseC    float64   `json:"top_oil_rise_c"`
	HotSpotC       float64   `json:"hot_spot_c"`
	AgingFactor    float64   `json:"aging_factor"`
}

type summaryPayload struct {
	RunID        string        `json:"run_id"`
	Scenario     string        `json:"scenario"`
	Policy       string        `json:"policy"`
	FleetSize    int           `json:"fleet_size"`
	Seed         int64         `json:"seed"`
	Summary      model.Summary `json:"summary"`
	TotalLoadMW  []float64     `json:"total_load_mw"`
	HotSpotC     []float64     `json:"hot_spot_c"`
	AgingFactors []float64     `json:"aging_factors"`
}

type comparisonPayload struct {
	Reference            string  `json:"reference"`
	ReferencePolicy      string  `json:"reference_policy"`
	ReferencePeakMW      float64 `json:"reference_peak_mw"`
	Candidate            string  `json:"candidate"`
	CandidatePolicy      string  `json:"candidate_policy"`
	CandidatePeakMW      float64 `json:"candidate_peak_mw"`
	PeakReductionPercent float64 `json:"peak_reduction_percent"`
	AgingHoursAvoided    float64 `json:"aging_hours_avoided"`
}

// RecordHour publishes the hour unless skip_hours is set.
func (p *ResultPublisher) RecordHour(ev coremetrics.HourEvent) error {
	if p.cfg.SkipHours {
		return nil
	}
	r := ev.Result
	return p.publish(p.runTopic(ev.Scenario, ev.Policy, "hour"), hourPayload{
		RunID:          ev.RunID,
		Scenario:       ev.Scenario,
		Policy:         ev.Policy.String(),
		Hour:           r.Hour,
		Time:           ev.Time,
		TotalLoadMW:    r.TotalLoadMW,
		EVLoadMW:       r.EVLoadMW,
		AmbientC:       r.AmbientC,
		LoadingPercent: r.PowerFlow.LoadingPercent,
		VoltagePU:      r.PowerFlow.VoltagePU,
		Collapsed:      r.PowerFlow.Collapsed,
		TopOilRiseC:    r.TopOilRiseC,
		HotSpotC:       r.Aging.HotSpotC,
		AgingFactor:    r.Aging.AgingFactor,
	})
}

// RecordRun publishes the run summary with its hourly curves.
func (p *ResultPublisher) RecordRun(run model.SimulationRun) error {
	return p.publish(p.runTopic(run.Name, run.Policy, "summary"), summaryPayload{
		RunID:        run.ID,
		Scenario:     run.Name,
		Policy:       run.Policy.String(),
		FleetSize:    run.FleetSize,
		Seed:         run.Seed,
		Summary:      run.Summary,
		TotalLoadMW:  run.TotalLoad.Slice(),
		HotSpotC:     run.HotSpots().Slice(),
		AgingFactors: run.AgingFactors().Slice(),
	})
}

// RecordComparison publishes the peak reduction of a policy comparison.
func (p *ResultPublisher) RecordComparison(c model.Comparison) error {
	return p.publish(p.cfg.TopicPrefix+"/comparison", comparisonPayload{
		Reference:            c.Reference.Name,
		ReferencePolicy:      c.Reference.Policy.String(),
		ReferencePeakMW:      c.Reference.Summary.PeakLoadMW,
		Candidate:            c.Candidate.Name,
		CandidatePolicy:      c.Candidate.Policy.String(),
		CandidatePeakMW:      c.Candidate.Summary.PeakLoadMW,
		PeakReductionPercent: c.PeakReductionPercent,
		AgingHoursAvoided:    c.Reference.Summary.TotalAgingHours - c.Candidate.Summary.TotalAgingHours,
	})
}

// Close marks the publisher offline and disconnects.
func (p *ResultPublisher) Close() error {
	if p.cli == nil || !p.cli.IsConnected() {
		return nil
	}
	token := p.cli.Publish(p.cfg.StatusTopic(), p.cfg.QoS, true, "offline")
	token.Wait()
	err := token.Error()
	p.cli.Disconnect(250)
	return err
}

func (p *ResultPublisher) runTopic(scenario string, policy model.ChargingPolicy, leaf string) string {
	return strings.Join([]string{p.cfg.TopicPrefix, topicSegment(scenario), policy.String(), leaf}, "/")
}

func (p *ResultPublisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

var segmentReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_")

func topicSegment(s string) string {
	if s == "" {
		return "unnamed"
	}
	return segmentReplacer.Replace(s)
}
