package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginsTotal counts login attempts by outcome
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"},
	)

	// AuthzDenials counts requests refused by the permission table or hierarchy checks
	AuthzDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_denials_total",
			Help: "Total number of denied authorization checks",
		},
		[]string{"action"},
	)

	// UsersCreated counts created accounts by role
	UsersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Total number of user accounts created",
		},
		[]string{"role"},
	)

	// LedgerTransactions counts game transactions by outcome
	LedgerTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Total number of game transactions submitted",
		},
		[]string{"status"},
	)

	// LedgerDebited tracks debited amounts
	LedgerDebited = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_debited_amount",
			Help:    "Amount debited per game transaction",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	// CardAssignments counts bingo card set replacements
	CardAssignments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bingo_card_assignments_total",
			Help: "Total number of bingo card sets assigned",
		},
	)

	// CacheLookups counts cache lookups by result
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"result"},
	)
)
