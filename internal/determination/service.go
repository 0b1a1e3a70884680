package determination

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"contractguide/internal/determination/metrics"
	dErrors "contractguide/pkg/domain-errors"
	"contractguide/pkg/requestcontext"
)

const tracerName = "contractguide/internal/determination"

// Result is a determination stamped with the time it was produced.
type Result struct {
	Determination
	EvaluatedAt time.Time
}

// Service wraps the engine with logging, metrics and tracing. It adds no
// state of its own; the engine stays a pure function.
type Service struct {
	engine  *Engine
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// NewService constructs a Service. The engine is required.
func NewService(engine *Engine, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "determination engine is required")
	}
	s := &Service{
		engine: engine,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Evaluate runs the engine for one request.
func (s *Service) Evaluate(ctx context.Context, in Input) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "determination.Evaluate",
		trace.WithAttributes(
			attribute.String("contract_type", in.ContractType.String()),
			attribute.String("special_reason", in.SpecialReason.String()),
		))
	defer span.End()

	start := time.Now()
	d, err := s.engine.Evaluate(in)
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	if err != nil {
		s.metrics.IncrementInvalidInput()
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid input")
		s.logger.WarnContext(ctx, "determination rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("outcome", string(d.Article.Outcome)),
		attribute.String("office", string(d.Office.Kind)),
	)
	s.metrics.IncrementOutcome(string(d.Article.Outcome), string(d.Office.Kind), in.ContractType.String())
	s.logger.InfoContext(ctx, "determination evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"contract_type", in.ContractType.String(),
		"planned_price", in.PlannedPrice.String(),
		"special_reason", in.SpecialReason.String(),
		"outcome", d.Article.Outcome,
		"office", d.Office.Kind,
		"quotation", d.Quotation.Kind,
	)

	return &Result{Determination: d, EvaluatedAt: requestcontext.Now(ctx)}, nil
}

// ContractTypeOption is one selectable category for input forms.
type ContractTypeOption struct {
	Type            ContractType
	Name            string
	PriceLimit      Amount
	OfficeThreshold *Amount
}

// ReasonOption is one selectable special reason for input forms.
type ReasonOption struct {
	Reason   SpecialReason
	Name     string
	OneParty bool
	Notes    string
}

// Reference lists the selectable inputs in code order.
type Reference struct {
	ContractTypes []ContractTypeOption
	Reasons       []ReasonOption
}

// Reference returns the input options derived from the engine's tables.
func (s *Service) Reference() Reference {
	t := s.engine.tables
	ref := Reference{}
	for _, ct := range AllContractTypes() {
		e := t.ContractTypes[ct]
		opt := ContractTypeOption{Type: ct, Name: e.Name, PriceLimit: e.PriceLimit}
		if e.OfficeThreshold != nil {
			v := *e.OfficeThreshold
			opt.OfficeThreshold = &v
		}
		ref.ContractTypes = append(ref.ContractTypes, opt)
	}
	for _, r := range AllSpecialReasons() {
		e := t.Reasons[r]
		ref.Reasons = append(ref.Reasons, ReasonOption{
			Reason:   r,
			Name:     s.engine.ReasonName(r),
			OneParty: e.OneParty,
			Notes:    e.Notes,
		})
	}
	return ref
}
