package service

import "github.com/prometheus/client_golang/prometheus"

var (
	favoriteToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "favorite_toggles_total", Help: "Favorite toggles by result"},
		[]string{"result"},
	)
	adsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ads_created_total", Help: "Listings created"},
		[]string{"draft"},
	)
	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "user_registrations_total", Help: "Successful registrations"},
	)
)

func init() { prometheus.MustRegister(favoriteToggles, adsCreated, registrations) }
