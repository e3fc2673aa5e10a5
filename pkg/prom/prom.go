package prom

import (
	"fmt"
	"sync"

	xhttp "github.com/nimasrn/household-ledger/pkg/http"
	"github.com/nimasrn/household-ledger/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemObligations = "obligation"
	SystemPiggyBank   = "piggy_bank"
)

const (
	MetricObligationConfirmed      = "confirmed_total"
	MetricObligationReversed       = "reversed_total"
	MetricObligationDeleted        = "deleted_total"
	MetricCardLinkFailed           = "card_link_failed_total"
	MetricProjectionDuration       = "projection_duration_seconds"
	MetricPiggyBankEntriesRecorded = "entries_total"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers every metric the service reports. Until it is called all
// recording helpers are no-ops.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemObligations, MetricObligationConfirmed, []string{"kind", "materialized"}))
	hasError(createCounterVec(SystemObligations, MetricObligationReversed, []string{"kind"}))
	hasError(createCounterVec(SystemObligations, MetricObligationDeleted, []string{"kind"}))
	hasError(createCounter(SystemObligations, MetricCardLinkFailed))
	hasError(createHistogramVec(SystemObligations, MetricProjectionDuration, []string{"kind"}))
	hasError(createCounterVec(SystemPiggyBank, MetricPiggyBankEntriesRecorded, []string{"direction"}))

	if err == nil {
		MetricSystemEnabled = true
	}
	return err
}

func ListenAndServer(addr string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     []float64{.0001, .0005, .001, .005, .01, .05, .1},
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}

func IncCounter(subsystem, name string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Inc()
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

func AddObligationConfirmed(kind string, materialized bool) {
	IncCounterVec(SystemObligations, MetricObligationConfirmed, kind, fmt.Sprintf("%t", materialized))
}

func AddObligationReversed(kind string) {
	IncCounterVec(SystemObligations, MetricObligationReversed, kind)
}

func AddObligationDeleted(kind string) {
	IncCounterVec(SystemObligations, MetricObligationDeleted, kind)
}

func AddCardLinkFailure() {
	IncCounter(SystemObligations, MetricCardLinkFailed)
}

func AddProjectionDuration(seconds float64, kind string) {
	AddHistogramVec(SystemObligations, MetricProjectionDuration, seconds, kind)
}

func AddPiggyBankEntry(direction string) {
	IncCounterVec(SystemPiggyBank, MetricPiggyBankEntriesRecorded, direction)
}
