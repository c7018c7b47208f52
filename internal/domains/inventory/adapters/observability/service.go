package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	invtypes "github.com/Apurer/go-stock-gateway/internal/domains/inventory/application/types"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

const tracerName = "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/observability/service"

// Service decorates the inventory application port with tracing, logging,
// and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// EffectiveStock reports the reconciled stock level with instrumentation.
func (s *Service) EffectiveStock(ctx context.Context, input invtypes.ProductIdentifier) (int64, error) {
	ctx, span := s.startSpan(ctx, "Service.EffectiveStock", attribute.Int64("product.id", input.ProductID))
	defer span.End()

	stock, err := s.inner.EffectiveStock(ctx, input)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to compute effective stock", slog.Int64("product.id", input.ProductID))
	}
	span.SetAttributes(attribute.Int64("product.effective_stock", stock))
	s.metrics.recordRead(ctx)
	return stock, nil
}

// Retrieve accepts a stock withdrawal with instrumentation.
func (s *Service) Retrieve(ctx context.Context, input invtypes.MovementInput) (*invtypes.MovementResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Retrieve",
		attribute.Int64("product.id", input.ProductID),
		attribute.Int64("movement.amount", input.Amount),
	)
	defer span.End()

	s.logInfo(ctx, "retrieving stock", slog.Int64("product.id", input.ProductID), slog.Int64("amount", input.Amount))
	result, err := s.inner.Retrieve(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx)
		return nil, s.handleError(ctx, span, err, "retrieval not accepted",
			slog.Int64("product.id", input.ProductID), slog.Int64("amount", input.Amount))
	}
	s.metrics.recordRetrieved(ctx, input.Amount)
	s.logInfo(ctx, "stock retrieval accepted",
		slog.Int64("product.id", result.ProductID),
		slog.String("operation.id", result.OperationID),
		slog.Int64("effective_stock", result.EffectiveStock))
	return result, nil
}

// Restock accepts a stock addition with instrumentation.
func (s *Service) Restock(ctx context.Context, input invtypes.MovementInput) (*invtypes.MovementResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Restock",
		attribute.Int64("product.id", input.ProductID),
		attribute.Int64("movement.amount", input.Amount),
	)
	defer span.End()

	s.logInfo(ctx, "restocking", slog.Int64("product.id", input.ProductID), slog.Int64("amount", input.Amount))
	result, err := s.inner.Restock(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "restock not accepted",
			slog.Int64("product.id", input.ProductID), slog.Int64("amount", input.Amount))
	}
	s.metrics.recordRestocked(ctx, input.Amount)
	s.logInfo(ctx, "restock accepted",
		slog.Int64("product.id", result.ProductID),
		slog.String("operation.id", result.OperationID),
		slog.Int64("effective_stock", result.EffectiveStock))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	stockReads      metric.Int64Counter
	stockRetrieved  metric.Int64Counter
	stockRestocked  metric.Int64Counter
	retrievalDenied metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	stockReads, _ := m.Int64Counter("inventory.service.reads", metric.WithDescription("Number of effective-stock reads"))
	stockRetrieved, _ := m.Int64Counter("inventory.service.retrieved", metric.WithDescription("Units of stock retrieved"))
	stockRestocked, _ := m.Int64Counter("inventory.service.restocked", metric.WithDescription("Units of stock restocked"))
	retrievalDenied, _ := m.Int64Counter("inventory.service.rejected", metric.WithDescription("Number of rejected retrievals"))
	return serviceMetrics{
		stockReads:      stockReads,
		stockRetrieved:  stockRetrieved,
		stockRestocked:  stockRestocked,
		retrievalDenied: retrievalDenied,
	}
}

func (m serviceMetrics) recordRead(ctx context.Context) {
	if m.stockReads != nil {
		m.stockReads.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordRetrieved(ctx context.Context, amount int64) {
	if m.stockRetrieved != nil {
		m.stockRetrieved.Add(ctx, amount)
	}
}

func (m serviceMetrics) recordRestocked(ctx context.Context, amount int64) {
	if m.stockRestocked != nil {
		m.stockRestocked.Add(ctx, amount)
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context) {
	if m.retrievalDenied != nil {
		m.retrievalDenied.Add(ctx, 1)
	}
}
