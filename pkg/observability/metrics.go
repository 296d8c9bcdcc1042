package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// MetricsClient is the part of the CloudWatch client Metrics uses
type MetricsClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics handles application metrics and monitoring.
// A Metrics without a client drops everything.
type Metrics struct {
	namespace string
	client    MetricsClient
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client MetricsClient, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

func dimension(name, value string) types.Dimension {
	return types.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordCommandExecution records metrics for command execution
func (m *Metrics) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	m.recordExecution(ctx, "Command", commandName, duration, err)
}

// RecordQueryExecution records metrics for query execution
func (m *Metrics) RecordQueryExecution(ctx context.Context, queryName string, duration time.Duration, err error) {
	m.recordExecution(ctx, "Query", queryName, duration, err)
}

func (m *Metrics) recordExecution(ctx context.Context, kind, name string, duration time.Duration, err error) {
	dims := []types.Dimension{dimension(kind+"Name", name), dimension("Status", status(err))}
	now := time.Now()
	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String(kind + "Execution"),
			Dimensions: dims,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(now),
		},
		{
			MetricName: aws.String(kind + "Count"),
			Dimensions: dims,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		},
	})
}

// RecordLatency records latency for any operation
func (m *Metrics) RecordLatency(ctx context.Context, operation string, latency time.Duration) {
	m.put(ctx, []types.MetricDatum{{
		MetricName: aws.String("OperationLatency"),
		Dimensions: []types.Dimension{dimension("Operation", operation)},
		Value:      aws.Float64(float64(latency.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Timestamp:  aws.Time(time.Now()),
	}})
}

// RecordLineageSize records how large a built lineage graph was
func (m *Metrics) RecordLineageSize(ctx context.Context, nodes, levels int) {
	now := time.Now()
	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("LineageNodes"),
			Value:      aws.Float64(float64(nodes)),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		},
		{
			MetricName: aws.String("LineageLevels"),
			Value:      aws.Float64(float64(levels)),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		},
	})
}

// RecordError records error occurrences
func (m *Metrics) RecordError(ctx context.Context, errorType string, errorCode string) {
	m.put(ctx, []types.MetricDatum{{
		MetricName: aws.String("Errors"),
		Dimensions: []types.Dimension{dimension("ErrorType", errorType), dimension("ErrorCode", errorCode)},
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
	}})
}

func (m *Metrics) put(ctx context.Context, data []types.MetricDatum) {
	if m == nil || m.client == nil {
		return
	}
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("Failed to send metrics", zap.Error(err), zap.String("metric", aws.ToString(data[0].MetricName)))
	}
}
