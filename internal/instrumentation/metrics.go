package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrTool      = "tool"
	attrMailbox   = "mailbox"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSlotListings  metric.Int64UpDownCounter

	// Backend metrics (IMAP server, calendar file)
	backendOperationsTotal   metric.Int64Counter
	backendOperationDuration metric.Float64Histogram

	// Scheduling metrics
	freeSlotsReturned metric.Int64Histogram
	slotsBlockedTotal metric.Int64Counter
	draftsSavedTotal  metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.activeSlotListings, err = meter.Int64UpDownCounter(
		"active_slot_listings",
		metric.WithDescription("Number of live slot listing sessions"),
		metric.WithUnit("{listing}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_slot_listings gauge: %w", err)
	}

	m.backendOperationsTotal, err = meter.Int64Counter(
		"backend_operations_total",
		metric.WithDescription("Total number of IMAP and calendar file operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend_operations_total counter: %w", err)
	}

	m.backendOperationDuration, err = meter.Float64Histogram(
		"backend_operation_duration_seconds",
		metric.WithDescription("IMAP and calendar file operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend_operation_duration_seconds histogram: %w", err)
	}

	m.freeSlotsReturned, err = meter.Int64Histogram(
		"free_slots_returned",
		metric.WithDescription("Number of free slots returned per get_free_slots call"),
		metric.WithUnit("{slot}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create free_slots_returned histogram: %w", err)
	}

	m.slotsBlockedTotal, err = meter.Int64Counter(
		"slots_blocked_total",
		metric.WithDescription("Total number of slots blocked"),
		metric.WithUnit("{slot}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create slots_blocked_total counter: %w", err)
	}

	m.draftsSavedTotal, err = meter.Int64Counter(
		"drafts_saved_total",
		metric.WithDescription("Total number of reply drafts saved via IMAP"),
		metric.WithUnit("{draft}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drafts_saved_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordBackendOperation records a backend operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: backend name (imap, calendar)
//   - operation: operation type (search, fetch, append, load, save)
//   - status: result status ("success" or "error")
//   - duration: time taken for the operation
func (m *Metrics) RecordBackendOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.backendOperationsTotal == nil || m.backendOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.backendOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.backendOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordFreeSlotsReturned records how many slots a listing produced.
func (m *Metrics) RecordFreeSlotsReturned(ctx context.Context, count int) {
	if m.freeSlotsReturned == nil {
		return // Instrumentation not initialized
	}

	m.freeSlotsReturned.Record(ctx, int64(count))
}

// RecordSlotBlocked records a successful slot block.
func (m *Metrics) RecordSlotBlocked(ctx context.Context) {
	if m.slotsBlockedTotal == nil {
		return // Instrumentation not initialized
	}

	m.slotsBlockedTotal.Add(ctx, 1)
}

// RecordDraftSaved records a successfully saved reply draft.
func (m *Metrics) RecordDraftSaved(ctx context.Context) {
	if m.draftsSavedTotal == nil {
		return // Instrumentation not initialized
	}

	m.draftsSavedTotal.Add(ctx, 1)
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: name of the MCP tool (e.g., "get_free_slots", "search_emails")
//   - status: result status ("success" or "error")
//   - duration: time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementActiveSlotListings increments the active slot listings counter.
func (m *Metrics) IncrementActiveSlotListings(ctx context.Context) {
	if m.activeSlotListings == nil {
		return // Instrumentation not initialized
	}

	m.activeSlotListings.Add(ctx, 1)
}

// DecrementActiveSlotListings decrements the active slot listings counter.
func (m *Metrics) DecrementActiveSlotListings(ctx context.Context) {
	if m.activeSlotListings == nil {
		return // Instrumentation not initialized
	}

	m.activeSlotListings.Add(ctx, -1)
}

// RecordToolInvocationWithMailbox records an MCP tool invocation with mailbox info.
// The mailbox label is only included when detailedLabels is enabled, since
// arbitrary mailbox names can explode metric cardinality.
func (m *Metrics) RecordToolInvocationWithMailbox(ctx context.Context, toolName, status, mailbox string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	if m.detailedLabels && mailbox != "" {
		attrs = append(attrs, attribute.String(attrMailbox, mailbox))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
