// Package observability emits operational metrics to CloudWatch.
package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const metricNamespace = "Lineage/API"

// Metrics publishes counters and latency measurements. When disabled it is a
// no-op, so call sites never need to branch on configuration.
type Metrics struct {
	client  *cloudwatch.Client
	logger  *zap.Logger
	enabled bool
}

// NewMetrics creates a metrics publisher. Disabled metrics carry no client.
func NewMetrics(ctx context.Context, region string, enabled bool, logger *zap.Logger) (*Metrics, error) {
	if !enabled {
		return &Metrics{logger: logger}, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		client:  cloudwatch.NewFromConfig(cfg),
		logger:  logger,
		enabled: true,
	}, nil
}

// NoopMetrics returns a disabled publisher for tests
func NoopMetrics(logger *zap.Logger) *Metrics {
	return &Metrics{logger: logger}
}

// CountRequest records one API request with its route and status class
func (m *Metrics) CountRequest(ctx context.Context, route string, status int) {
	m.put(ctx, "RequestCount", 1, cwtypes.StandardUnitCount,
		dimension("Route", route),
		dimension("StatusClass", statusClass(status)),
	)
}

// ObserveLatency records one request's handling time
func (m *Metrics) ObserveLatency(ctx context.Context, route string, d time.Duration) {
	m.put(ctx, "RequestLatency", float64(d.Milliseconds()), cwtypes.StandardUnitMilliseconds,
		dimension("Route", route),
	)
}

// CountValidationFailure records a rejected relationship by error type
func (m *Metrics) CountValidationFailure(ctx context.Context, errorType string) {
	m.put(ctx, "ValidationFailure", 1, cwtypes.StandardUnitCount,
		dimension("ErrorType", errorType),
	)
}

func (m *Metrics) put(ctx context.Context, name string, value float64, unit cwtypes.StandardUnit, dims ...cwtypes.Dimension) {
	if !m.enabled {
		return
	}
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricNamespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: aws.String(name),
			Value:      aws.Float64(value),
			Unit:       unit,
			Dimensions: dims,
			Timestamp:  aws.Time(time.Now()),
		}},
	})
	if err != nil {
		// metrics must never fail a request
		m.logger.Warn("failed to publish metric", zap.String("metric", name), zap.Error(err))
	}
}

func dimension(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
