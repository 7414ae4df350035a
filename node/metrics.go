package node

import (
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	accountEventMeter     = metrics.NewRegisteredMeter("proofnode/events/account", nil)
	transactionEventMeter = metrics.NewRegisteredMeter("proofnode/events/transaction", nil)
	voteEventMeter        = metrics.NewRegisteredMeter("proofnode/events/vote", nil)
	blockMetaEventMeter   = metrics.NewRegisteredMeter("proofnode/events/blockmeta", nil)
	slotEventMeter        = metrics.NewRegisteredMeter("proofnode/events/slot", nil)

	droppedEventCounter  = metrics.NewRegisteredCounter("proofnode/events/dropped", nil)
	rejectedEventCounter = metrics.NewRegisteredCounter("proofnode/events/rejected", nil)

	updateEmittedCounter = metrics.NewRegisteredCounter("proofnode/updates/emitted", nil)
	slotFailureCounter   = metrics.NewRegisteredCounter("proofnode/updates/failed", nil)

	subscriberGauge      = metrics.NewRegisteredGauge("proofnode/subscribers", nil)
	subscriberGapCounter = metrics.NewRegisteredCounter("proofnode/subscribers/gaps", nil)
)
