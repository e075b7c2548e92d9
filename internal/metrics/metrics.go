// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	RetrainsTotal       = expvar.NewInt("retrains_total")
	RetrainFailures     = expvar.NewInt("retrain_failures")
	PromotionsTotal     = expvar.NewInt("promotions_total")
	PredictionsTotal    = expvar.NewInt("predictions_total")
	PredictionsRejected = expvar.NewInt("predictions_rejected")
	ModelReloads        = expvar.NewInt("model_reloads")
	ModelLoadFailures   = expvar.NewInt("model_load_failures")
	TrackingFailures    = expvar.NewInt("tracking_failures")
)
