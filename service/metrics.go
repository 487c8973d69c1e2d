package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	progressAppended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "works",
		Name:      "progress_entries_appended_total",
		Help:      "Number of progress entries appended to proposals.",
	})

	approvalDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "works",
		Name:      "approval_decisions_total",
		Help:      "Approval decisions by stage and action.",
	}, []string{"stage", "action"})

	stageRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "works",
		Name:      "stage_records_total",
		Help:      "Tender and work order records written.",
	}, []string{"stage"})

	saveConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "works",
		Name:      "proposal_save_conflicts_total",
		Help:      "Optimistic concurrency conflicts when saving a proposal.",
	})
)
