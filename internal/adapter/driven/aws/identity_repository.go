package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSAPI is the subset of the STS client the repository needs.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// IdentityRepository resolves the account of the configured credentials.
type IdentityRepository struct {
	client STSAPI
}

func NewIdentityRepository(client STSAPI) *IdentityRepository {
	return &IdentityRepository{client: client}
}

func (r *IdentityRepository) GetAccountID(ctx context.Context) (string, error) {
	result, err := r.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", apiError("GetCallerIdentity", err)
	}
	return aws.ToString(result.Account), nil
}
