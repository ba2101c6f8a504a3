package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"cpfgate/internal/customer"
	"cpfgate/pkg/platform/sentinel"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretStore reads JSON credentials from AWS Secrets Manager on every call.
type AWSSecretStore struct {
	client SecretsManagerAPI
}

func NewAWSSecretStore(client SecretsManagerAPI) *AWSSecretStore {
	return &AWSSecretStore{client: client}
}

func (s *AWSSecretStore) Fetch(ctx context.Context, secretID string) (customer.Credentials, error) {
	if secretID == "" {
		return customer.Credentials{}, fmt.Errorf("empty secret id: %w", ErrSecretNotFound)
	}
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return customer.Credentials{}, fmt.Errorf("%s: %w", secretID, ErrSecretNotFound)
		}
		return customer.Credentials{}, fmt.Errorf("get secret value: %w: %w", sentinel.ErrUnavailable, err)
	}
	if out.SecretString == nil {
		return customer.Credentials{}, fmt.Errorf("%s has no string value: %w", secretID, ErrSecretMalformed)
	}

	var creds customer.Credentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return customer.Credentials{}, fmt.Errorf("%s: %w", secretID, ErrSecretMalformed)
	}
	if creds.Username == "" || creds.Password == "" {
		return customer.Credentials{}, fmt.Errorf("%s missing username or password: %w", secretID, ErrSecretMalformed)
	}
	return creds, nil
}
