package filestore

import "github.com/prometheus/client_golang/prometheus"

const (
	labelCollection = "collection"
	labelOp         = "op"
	labelResult     = "result"

	opLoad = "load"
	opSave = "save"

	resultOK    = "ok"
	resultError = "error"
)

type Metrics struct {
	Ops     *prometheus.CounterVec
	Records *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filestore_operations_total",
				Help: "Whole-file loads and saves by outcome",
			},
			[]string{labelCollection, labelOp, labelResult},
		),
		Records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "filestore_records",
				Help: "Records seen on the last successful load or save",
			},
			[]string{labelCollection},
		),
	}

	reg.MustRegister(m.Ops, m.Records)
	return m
}

func (m *Metrics) loaded(name string, n int) {
	if m == nil {
		return
	}
	m.Ops.WithLabelValues(name, opLoad, resultOK).Inc()
	m.Records.WithLabelValues(name).Set(float64(n))
}

func (m *Metrics) loadFailed(name string) {
	if m == nil {
		return
	}
	m.Ops.WithLabelValues(name, opLoad, resultError).Inc()
}

func (m *Metrics) saved(name string, n int) {
	if m == nil {
		return
	}
	m.Ops.WithLabelValues(name, opSave, resultOK).Inc()
	m.Records.WithLabelValues(name).Set(float64(n))
}

func (m *Metrics) saveFailed(name string) {
	if m == nil {
		return
	}
	m.Ops.WithLabelValues(name, opSave, resultError).Inc()
}
