package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdsTypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

// LogFilePageSize is the maximum number of records DescribeDBLogFiles returns.
const LogFilePageSize = 1000

// RDSAPI is the subset of the RDS client the repository needs.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	DescribeDBLogFiles(ctx context.Context, params *rds.DescribeDBLogFilesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBLogFilesOutput, error)
}

// RDSRepository lists cluster members and their log files.
type RDSRepository struct {
	client RDSAPI
}

// NewRDSRepository cria um novo RDSRepository.
func NewRDSRepository(client RDSAPI) *RDSRepository {
	return &RDSRepository{client: client}
}

// ListInstances returns every instance whose cluster is clusterID.
func (r *RDSRepository) ListInstances(ctx context.Context, clusterID string) ([]entity.DBInstance, error) {
	p := rds.NewDescribeDBInstancesPaginator(r.client, &rds.DescribeDBInstancesInput{
		Filters: []rdsTypes.Filter{
			{Name: aws.String("db-cluster-id"), Values: []string{clusterID}},
		},
	})

	var instances []entity.DBInstance
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, apiError("DescribeDBInstances", err)
		}
		for _, db := range page.DBInstances {
			instances = append(instances, entity.DBInstance{
				Identifier: aws.ToString(db.DBInstanceIdentifier),
				Engine:     aws.ToString(db.Engine),
				Class:      aws.ToString(db.DBInstanceClass),
				Status:     aws.ToString(db.DBInstanceStatus),
			})
		}
	}
	return instances, nil
}

// ListLogFiles returns one page of log file descriptors starting at marker.
// Missing fields become values that entity.LogFileDescriptor.Validate rejects.
func (r *RDSRepository) ListLogFiles(ctx context.Context, instanceID, marker string) (entity.LogFilePage, error) {
	input := &rds.DescribeDBLogFilesInput{
		DBInstanceIdentifier: aws.String(instanceID),
		MaxRecords:           aws.Int32(LogFilePageSize),
	}
	if marker != "" {
		input.Marker = aws.String(marker)
	}

	out, err := r.client.DescribeDBLogFiles(ctx, input)
	if err != nil {
		return entity.LogFilePage{}, apiError(fmt.Sprintf("DescribeDBLogFiles %s", instanceID), err)
	}

	page := entity.LogFilePage{
		Files:      make([]entity.LogFileDescriptor, 0, len(out.DescribeDBLogFiles)),
		NextMarker: aws.ToString(out.Marker),
	}
	for _, f := range out.DescribeDBLogFiles {
		d := entity.LogFileDescriptor{
			Name:        aws.ToString(f.LogFileName),
			SizeBytes:   entity.UnknownSize,
			LastWritten: entity.UnknownLastWritten,
		}
		if f.Size != nil {
			d.SizeBytes = *f.Size
		}
		if f.LastWritten != nil {
			d.LastWritten = *f.LastWritten
		}
		page.Files = append(page.Files, d)
	}
	return page, nil
}
