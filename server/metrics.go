package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ocpp",
	Name:      "connections_active",
	Help:      "Number of active ws connections",
})

var activeTransactionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ocpp",
	Name:      "transactions_active",
	Help:      "Number of open charging transactions",
})

var errorCounts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "protocol_error_count",
	Help:      "Total number of rejected frames by error code.",
}, []string{"code", "charge_point_id"})

func observeConnections(count int) {
	connectionsGauge.Set(float64(count))
}

func observeTransactions(count int) {
	activeTransactionsGauge.Set(float64(count))
}

func observeError(chargePointId, code string) {
	if len(code) == 0 || len(chargePointId) == 0 {
		return
	}
	errorCounts.With(prometheus.Labels{"code": code, "charge_point_id": chargePointId}).Inc()
}
