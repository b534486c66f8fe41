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

	ordersdomain "github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	ordersports "github.com/thirty33/foodshop-go/internal/domains/orders/ports"
)

const tracerName = "github.com/thirty33/foodshop-go/internal/domains/orders/adapters/observability"

// Cart decorates the cart service with tracing, logging, and metrics.
type Cart struct {
	inner   ordersports.CartService
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics cartMetrics
}

type Option func(*Cart)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cart) {
		c.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(c *Cart) {
		c.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(c *Cart) {
		c.metrics = newCartMetrics(m)
	}
}

// NewCart wraps the core cart service.
func NewCart(inner ordersports.CartService, opts ...Option) ordersports.CartService {
	c := &Cart{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newCartMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.tracer == nil {
		c.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return c
}

func (c *Cart) SetDate(ctx context.Context, date string) {
	ctx, span := c.tracer.Start(ctx, "CartService.SetDate", trace.WithAttributes(attribute.String("order.date", date)))
	defer span.End()

	c.logInfo(ctx, "switching dispatch date", slog.String("order.date", date))
	c.inner.SetDate(ctx, date)
}

func (c *Cart) Sync(ctx context.Context) {
	ctx, span := c.tracer.Start(ctx, "CartService.Sync")
	defer span.End()

	c.inner.Sync(ctx)
	span.SetAttributes(attribute.String("cart.state", string(c.inner.State())))
}

func (c *Cart) AddProduct(ctx context.Context, productID int64, quantity int) error {
	ctx, span := c.tracer.Start(ctx, "CartService.AddProduct",
		trace.WithAttributes(attribute.Int64("product.id", productID), attribute.Int("product.quantity", quantity)))
	defer span.End()

	c.logInfo(ctx, "adding product", slog.Int64("product.id", productID), slog.Int("quantity", quantity))
	if err := c.inner.AddProduct(ctx, productID, quantity); err != nil {
		return c.handleError(ctx, span, err, "failed to add product", slog.Int64("product.id", productID))
	}
	c.metrics.recordMutation(ctx, "add")
	c.logInfo(ctx, "product added", slog.Int64("product.id", productID))
	return nil
}

func (c *Cart) DeleteItem(ctx context.Context, productID int64) error {
	ctx, span := c.tracer.Start(ctx, "CartService.DeleteItem", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	c.logInfo(ctx, "removing product", slog.Int64("product.id", productID))
	if err := c.inner.DeleteItem(ctx, productID); err != nil {
		return c.handleError(ctx, span, err, "failed to remove product", slog.Int64("product.id", productID))
	}
	c.metrics.recordMutation(ctx, "delete")
	c.logInfo(ctx, "product removed", slog.Int64("product.id", productID))
	return nil
}

func (c *Cart) UpdateLine(ctx context.Context, change ordersports.LineChange) error {
	ctx, span := c.tracer.Start(ctx, "CartService.UpdateLine",
		trace.WithAttributes(attribute.Int64("line.id", change.LineID), attribute.Int("line.quantity", change.Quantity)))
	defer span.End()

	c.logInfo(ctx, "updating line", slog.Int64("line.id", change.LineID), slog.Int("quantity", change.Quantity))
	if err := c.inner.UpdateLine(ctx, change); err != nil {
		return c.handleError(ctx, span, err, "failed to update line", slog.Int64("line.id", change.LineID))
	}
	c.metrics.recordMutation(ctx, "update")
	return nil
}

func (c *Cart) SetPartiallyScheduled(ctx context.Context, lineID int64, scheduled bool) error {
	ctx, span := c.tracer.Start(ctx, "CartService.SetPartiallyScheduled",
		trace.WithAttributes(attribute.Int64("line.id", lineID), attribute.Bool("line.partially_scheduled", scheduled)))
	defer span.End()

	if err := c.inner.SetPartiallyScheduled(ctx, lineID, scheduled); err != nil {
		return c.handleError(ctx, span, err, "failed to toggle partial scheduling", slog.Int64("line.id", lineID))
	}
	c.metrics.recordMutation(ctx, "schedule")
	return nil
}

func (c *Cart) Order() *ordersdomain.Order {
	return c.inner.Order()
}

func (c *Cart) State() ordersdomain.SyncState {
	return c.inner.State()
}

func (c *Cart) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (c *Cart) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (c *Cart) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.logError(ctx, msg, err, attrs...)
	return err
}

type cartMetrics struct {
	mutations metric.Int64Counter
}

func newCartMetrics(m metric.Meter) cartMetrics {
	if m == nil {
		return cartMetrics{}
	}
	mutations, _ := m.Int64Counter("orders.cart.mutations", metric.WithDescription("Number of cart mutations"))
	return cartMetrics{mutations: mutations}
}

func (m cartMetrics) recordMutation(ctx context.Context, kind string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("mutation.kind", kind)))
	}
}

var _ ordersports.CartService = (*Cart)(nil)
