package service

import "github.com/prometheus/client_golang/prometheus"

var (
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "portal_logins_total", Help: "Login attempts by result"},
		[]string{"result"},
	)
	registrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "portal_registrations_total", Help: "Student accounts created"},
	)
	applicationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "portal_applications_total", Help: "Apply attempts by outcome"},
		[]string{"outcome"},
	)
	statusChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "portal_application_status_changes_total", Help: "Application status updates by new status"},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(loginsTotal, registrationsTotal, applicationsTotal, statusChangesTotal)
}
