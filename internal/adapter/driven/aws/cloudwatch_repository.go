package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

// CloudWatchAPI is the subset of the CloudWatch client the sink needs.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchSink publishes data points with PutMetricData.
type CloudWatchSink struct {
	client CloudWatchAPI
}

// NewCloudWatchSink cria um novo CloudWatchSink.
func NewCloudWatchSink(client CloudWatchAPI) *CloudWatchSink {
	return &CloudWatchSink{client: client}
}

// PublishMetric submits a single data point.
func (s *CloudWatchSink) PublishMetric(ctx context.Context, namespace string, datum entity.MetricDatum) error {
	_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: []cwTypes.MetricDatum{toCloudWatchDatum(datum)},
	})
	if err != nil {
		return apiError(fmt.Sprintf("PutMetricData %s/%s", namespace, datum.Name), err)
	}
	return nil
}

func toCloudWatchDatum(d entity.MetricDatum) cwTypes.MetricDatum {
	dims := make([]cwTypes.Dimension, 0, len(d.Dimensions))
	for _, dim := range d.Dimensions {
		dims = append(dims, cwTypes.Dimension{
			Name:  aws.String(dim.Name),
			Value: aws.String(dim.Value),
		})
	}

	out := cwTypes.MetricDatum{
		MetricName: aws.String(d.Name),
		Value:      aws.Float64(d.Value),
		Unit:       toStandardUnit(d.Unit),
		Dimensions: dims,
	}
	if !d.Timestamp.IsZero() {
		out.Timestamp = aws.Time(d.Timestamp)
	}
	return out
}

func toStandardUnit(u entity.MetricUnit) cwTypes.StandardUnit {
	switch u {
	case entity.UnitBytes:
		return cwTypes.StandardUnitBytes
	case entity.UnitCount:
		return cwTypes.StandardUnitCount
	default:
		return cwTypes.StandardUnitNone
	}
}
