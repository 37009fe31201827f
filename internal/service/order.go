package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"meshdemo/internal/client"
	"meshdemo/internal/model"
	"meshdemo/internal/repository"
)

var (
	ErrInvalidOrder     = errors.New("invalid order")
	ErrOrderIDRequired  = errors.New("order id is required")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDependencyFailed = errors.New("upstream dependency failed")
)

const (
	reasonInsufficientInventory = "Insufficient inventory"
	reasonPaymentFailed         = "Payment processing failed"
	messageProcessed            = "Order processed successfully"
)

const tracerName = "meshdemo/internal/service"

// OrderService defines the order-processing use cases.
type OrderService interface {
	// ProcessOrder stores the order, checks inventory for every item, then charges
	// the total. Rejections by inventory or payment come back as a response whose
	// status is FAILED or PAYMENT_FAILED; a nil error only means the flow ran.
	// Invalid requests return ErrInvalidOrder and unreachable dependencies
	// ErrDependencyFailed.
	ProcessOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResponse, error)

	// GetOrder returns a stored order by ID.
	GetOrder(ctx context.Context, id string) (*model.Order, error)
}

// OrderServiceDeps are the collaborators of NewOrderService.
type OrderServiceDeps struct {
	Repo      repository.OrderRepository
	Inventory client.InventoryClient
	Payment   client.PaymentClient
	Metrics   *OrderMetrics
	Log       zerolog.Logger
	// Currency is sent with every payment request.
	Currency string
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

type orderService struct {
	repo      repository.OrderRepository
	inventory client.InventoryClient
	payment   client.PaymentClient
	metrics   *OrderMetrics
	log       zerolog.Logger
	currency  string
	tracer    trace.Tracer
	now       func() time.Time
}

// NewOrderService constructs a new OrderService.
func NewOrderService(d OrderServiceDeps) OrderService {
	tp := d.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &orderService{
		repo:      d.Repo,
		inventory: d.Inventory,
		payment:   d.Payment,
		metrics:   d.Metrics,
		log:       d.Log,
		currency:  d.Currency,
		tracer:    tp.Tracer(tracerName),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *orderService) ProcessOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResponse, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "processOrder", trace.WithAttributes(
		attribute.String("customerId", req.CustomerID),
	))
	defer span.End()

	log := s.log.With().Str("customer_id", req.CustomerID).Logger()
	log.Info().Int("items", len(req.Items)).Msg("processing order")

	order := s.newOrder(req, span.SpanContext())
	span.SetAttributes(attribute.String("orderId", order.ID))

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, s.abort(ctx, span, log, nil, "save", fmt.Errorf("save order: %w", err))
	}
	s.metrics.created.Inc()

	available, err := s.checkInventory(ctx, order)
	if err != nil {
		return nil, s.abort(ctx, span, log, order, "inventory", fmt.Errorf("%w: %v", ErrDependencyFailed, err))
	}
	if !available {
		return s.reject(ctx, span, log, order, model.OrderStatusFailed, reasonInsufficientInventory, start)
	}

	if err := s.transition(ctx, order, model.OrderStatusInventoryConfirmed); err != nil {
		return nil, s.abort(ctx, span, log, order, "save", err)
	}

	payment, err := s.processPayment(ctx, order)
	if err != nil {
		return nil, s.abort(ctx, span, log, order, "payment", fmt.Errorf("%w: %v", ErrDependencyFailed, err))
	}
	if !payment.Successful() {
		return s.reject(ctx, span, log, order, model.OrderStatusPaymentFailed, reasonPaymentFailed, start)
	}

	order.PaymentID = payment.PaymentID
	if err := s.transition(ctx, order, model.OrderStatusCompleted); err != nil {
		return nil, s.abort(ctx, span, log, order, "save", err)
	}

	s.metrics.duration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	span.SetStatus(codes.Ok, "")
	log.Info().Str("order_id", order.ID).Str("payment_id", order.PaymentID).Msg("order completed")

	return orderResponse(order, messageProcessed), nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, ErrOrderIDRequired
	}

	ctx, span := s.tracer.Start(ctx, "getOrder", trace.WithAttributes(
		attribute.String("orderId", id),
		attribute.String("code.function", "getOrder"),
	))
	defer span.End()

	// Order IDs are UUIDs; anything else cannot exist.
	if _, err := uuid.Parse(id); err != nil {
		span.SetStatus(codes.Error, ErrOrderNotFound.Error())
		return nil, ErrOrderNotFound
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			span.SetStatus(codes.Error, ErrOrderNotFound.Error())
			return nil, ErrOrderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return order, nil
}

// checkInventory asks the inventory service about every item and stops at the first shortage.
func (s *orderService) checkInventory(ctx context.Context, order *model.Order) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "checkInventory", trace.WithAttributes(
		attribute.String("code.function", "checkInventory"),
		attribute.String("orderId", order.ID),
	))
	defer span.End()

	start := time.Now()
	for _, item := range order.Items {
		span.SetAttributes(
			attribute.String("product.id", item.ProductID),
			attribute.Int("product.quantity", item.Quantity),
		)

		res, err := s.inventory.Check(ctx, item.ProductID, item.Quantity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return false, err
		}
		if !res.Available {
			span.SetAttributes(attribute.Bool("inventory.available", false))
			span.SetStatus(codes.Error, reasonInsufficientInventory)
			return false, nil
		}
	}

	s.metrics.inventoryDuration.Observe(time.Since(start).Seconds())
	span.SetStatus(codes.Ok, "")
	return true, nil
}

// processPayment charges the order total.
func (s *orderService) processPayment(ctx context.Context, order *model.Order) (*model.PaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "processPayment", trace.WithAttributes(
		attribute.String("code.function", "processPayment"),
		attribute.String("orderId", order.ID),
		attribute.Int64("amountCents", order.TotalCents),
	))
	defer span.End()

	start := time.Now()
	res, err := s.payment.Process(ctx, model.PaymentRequest{
		OrderID:     order.ID,
		AmountCents: order.TotalCents,
		Currency:    s.currency,
		CustomerID:  order.CustomerID,
	})
	if err != nil {
		s.metrics.paymentDuration.WithLabelValues("ERROR").Observe(time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.paymentDuration.WithLabelValues(string(res.Status)).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("payment.status", string(res.Status)))
	span.SetStatus(codes.Ok, "")
	return res, nil
}

// reject finishes an order turned down by inventory or payment.
func (s *orderService) reject(ctx context.Context, span trace.Span, log zerolog.Logger, order *model.Order, status model.OrderStatus, reason string, start time.Time) (*model.OrderResponse, error) {
	span.SetAttributes(attribute.String("failure.reason", reason))

	if err := s.transition(ctx, order, status); err != nil {
		return nil, s.abort(ctx, span, log, order, "save", err)
	}

	s.metrics.failed.WithLabelValues(reason).Inc()
	s.metrics.duration.WithLabelValues("failure").Observe(time.Since(start).Seconds())
	log.Warn().Str("order_id", order.ID).Str("status", string(status)).Str("reason", reason).Msg("order rejected")

	return orderResponse(order, reason), nil
}

// abort records an infrastructure error. When order is non-nil it is marked FAILED
// on a best-effort basis so it does not stay in an intermediate state.
func (s *orderService) abort(ctx context.Context, span trace.Span, log zerolog.Logger, order *model.Order, stage string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.errors.WithLabelValues(stage).Inc()

	ev := log.Error().Err(err).Str("stage", stage)
	if order != nil {
		ev = ev.Str("order_id", order.ID)
		if saveErr := s.transition(ctx, order, model.OrderStatusFailed); saveErr != nil {
			log.Error().Err(saveErr).Str("order_id", order.ID).Msg("failed to mark order as failed")
		}
	}
	ev.Msg("order processing failed")

	return err
}

func (s *orderService) transition(ctx context.Context, order *model.Order, status model.OrderStatus) error {
	order.Status = status
	order.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, order); err != nil {
		return fmt.Errorf("save order as %s: %w", status, err)
	}
	return nil
}

func (s *orderService) newOrder(req model.OrderRequest, sc trace.SpanContext) *model.Order {
	now := s.now()
	order := &model.Order{
		ID:         uuid.NewString(),
		CustomerID: req.CustomerID,
		Items:      make([]model.OrderItem, 0, len(req.Items)),
		Status:     model.OrderStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if sc.IsValid() {
		order.TraceID = sc.TraceID().String()
		order.SpanID = sc.SpanID().String()
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	order.CalculateTotal()
	return order
}

func orderResponse(order *model.Order, message string) *model.OrderResponse {
	createdAt := order.CreatedAt
	return &model.OrderResponse{
		OrderID:    order.ID,
		Status:     order.Status,
		Message:    message,
		Items:      order.Items,
		TotalCents: order.TotalCents,
		CreatedAt:  &createdAt,
		TraceID:    order.TraceID,
	}
}

func validateOrderRequest(req model.OrderRequest) error {
	var problems []string
	if strings.TrimSpace(req.CustomerID) == "" {
		problems = append(problems, "customerId is required")
	}
	if len(req.Items) == 0 {
		problems = append(problems, "order must contain at least one item")
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			problems = append(problems, fmt.Sprintf("items[%d].productId is required", i))
		}
		if it.Quantity < 1 {
			problems = append(problems, fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
		if it.UnitPriceCents < 1 {
			problems = append(problems, fmt.Sprintf("items[%d].unitPriceCents must be at least 1", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOrder, strings.Join(problems, "; "))
	}
	return nil
}

// OrderMetrics are the order-processing counters and timers.
type OrderMetrics struct {
	created           prometheus.Counter
	failed            *prometheus.CounterVec
	errors            *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	inventoryDuration prometheus.Histogram
	paymentDuration   *prometheus.HistogramVec
}

// NewOrderMetrics creates and registers the order metrics on reg.
func NewOrderMetrics(reg prometheus.Registerer) (*OrderMetrics, error) {
	m := &OrderMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_created_total",
			Help: "Orders accepted and stored.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_failed_total",
			Help: "Orders rejected by inventory or payment.",
		}, []string{"reason"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_errors_total",
			Help: "Order processing aborted by an infrastructure error.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "order_processing_duration_seconds",
			Help:    "End-to-end order processing time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		inventoryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inventory_check_duration_seconds",
			Help:    "Time spent checking inventory for all items of an order.",
			Buckets: prometheus.DefBuckets,
		}),
		paymentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payment_processing_duration_seconds",
			Help:    "Time spent in the payment service call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{m.created, m.failed, m.errors, m.duration, m.inventoryDuration, m.paymentDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
