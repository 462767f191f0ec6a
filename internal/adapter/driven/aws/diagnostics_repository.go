package aws

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwlTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

// maxEventsPerBatch stays well below the PutLogEvents limit of 10,000 events.
const maxEventsPerBatch = 1000

// CloudWatchLogsAPI is the subset of the CloudWatch Logs client the sink needs.
type CloudWatchLogsAPI interface {
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// DiagnosticsLogSink writes diagnostics as JSON events to one log stream per run.
// Ship is safe for concurrent use; calls are serialized.
type DiagnosticsLogSink struct {
	mu        sync.Mutex
	client    CloudWatchLogsAPI
	logGroup  string
	logStream string
	created   bool
}

// NewDiagnosticsLogSink cria um sink para o log group informado.
// The stream is created on first use; an existing stream is reused.
func NewDiagnosticsLogSink(client CloudWatchLogsAPI, logGroup, logStream string) *DiagnosticsLogSink {
	return &DiagnosticsLogSink{client: client, logGroup: logGroup, logStream: logStream}
}

// Ship sends diagnostics in chronological order.
func (s *DiagnosticsLogSink) Ship(ctx context.Context, diagnostics []entity.Diagnostic) error {
	if len(diagnostics) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureStream(ctx); err != nil {
		return err
	}

	events := make([]cwlTypes.InputLogEvent, 0, len(diagnostics))
	for _, d := range diagnostics {
		body, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encoding diagnostic: %w", err)
		}
		ts := d.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		events = append(events, cwlTypes.InputLogEvent{
			Message:   aws.String(string(body)),
			Timestamp: aws.Int64(ts.UnixMilli()),
		})
	}
	slices.SortStableFunc(events, func(a, b cwlTypes.InputLogEvent) int {
		return cmp.Compare(aws.ToInt64(a.Timestamp), aws.ToInt64(b.Timestamp))
	})

	for batch := range slices.Chunk(events, maxEventsPerBatch) {
		_, err := s.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
			LogGroupName:  aws.String(s.logGroup),
			LogStreamName: aws.String(s.logStream),
			LogEvents:     batch,
		})
		if err != nil {
			return apiError(fmt.Sprintf("PutLogEvents %s", s.logGroup), err)
		}
	}
	return nil
}

func (s *DiagnosticsLogSink) ensureStream(ctx context.Context) error {
	if s.created {
		return nil
	}
	_, err := s.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(s.logGroup),
		LogStreamName: aws.String(s.logStream),
	})
	if err != nil && errorCode(err) != "ResourceAlreadyExistsException" {
		return apiError(fmt.Sprintf("CreateLogStream %s", s.logGroup), err)
	}
	s.created = true
	return nil
}
