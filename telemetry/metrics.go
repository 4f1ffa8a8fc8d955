package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const (
	processesStartedCounterName   = "distproc.node.processes.started"
	processesDiedCounterName      = "distproc.node.processes.died"
	messagesSentCounterName       = "distproc.node.messages.sent"
	connectionsOpenedCounterName  = "distproc.node.connections.opened"
	connectionsFailedCounterName  = "distproc.node.connections.failed"
	mailboxSizeGaugeName          = "distproc.process.mailbox.size"
	signalDispatchHistogramName   = "distproc.node.signal.dispatch.duration"
)

// NodeMetrics are the counters and gauges a Node Controller updates as it
// spawns processes, dispatches signals, and opens or loses connections.
type NodeMetrics struct {
	ProcessesStarted  metric.Int64Counter
	ProcessesDied     metric.Int64Counter
	MessagesSent      metric.Int64Counter
	ConnectionsOpened metric.Int64Counter
	ConnectionsFailed metric.Int64Counter
	MailboxSize       metric.Int64Gauge
	SignalDispatch    metric.Float64Histogram
}

// NewNodeMetrics registers every NodeMetrics instrument against meter.
func NewNodeMetrics(meter metric.Meter) (*NodeMetrics, error) {
	m := new(NodeMetrics)
	var err error

	if m.ProcessesStarted, err = meter.Int64Counter(
		processesStartedCounterName,
		metric.WithDescription("Number of local processes spawned on this node"),
	); err != nil {
		return nil, fmt.Errorf("failed to create processes-started counter: %w", err)
	}

	if m.ProcessesDied, err = meter.Int64Counter(
		processesDiedCounterName,
		metric.WithDescription("Number of local processes that have terminated"),
	); err != nil {
		return nil, fmt.Errorf("failed to create processes-died counter: %w", err)
	}

	if m.MessagesSent, err = meter.Int64Counter(
		messagesSentCounterName,
		metric.WithDescription("Number of data frames handed to the transport for delivery"),
	); err != nil {
		return nil, fmt.Errorf("failed to create messages-sent counter: %w", err)
	}

	if m.ConnectionsOpened, err = meter.Int64Counter(
		connectionsOpenedCounterName,
		metric.WithDescription("Number of outbound or inbound connections established"),
	); err != nil {
		return nil, fmt.Errorf("failed to create connections-opened counter: %w", err)
	}

	if m.ConnectionsFailed, err = meter.Int64Counter(
		connectionsFailedCounterName,
		metric.WithDescription("Number of connections marked permanently failed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create connections-failed counter: %w", err)
	}

	if m.MailboxSize, err = meter.Int64Gauge(
		mailboxSizeGaugeName,
		metric.WithDescription("Mailbox depth at the moment a message was pushed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mailbox-size gauge: %w", err)
	}

	if m.SignalDispatch, err = meter.Float64Histogram(
		signalDispatchHistogramName,
		metric.WithDescription("Time the Node Controller spends handling one control signal"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create signal-dispatch histogram: %w", err)
	}

	return m, nil
}
