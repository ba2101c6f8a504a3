package directory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"cpfgate/pkg/platform/sentinel"
)

// DefaultAttribute is the custom attribute holding the CPF.
const DefaultAttribute = "custom:cpf"

// CognitoAPI is the subset of the Cognito client used here.
type CognitoAPI interface {
	ListUsers(ctx context.Context, in *cognitoidentityprovider.ListUsersInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ListUsersOutput, error)
}

// CognitoFinder searches a Cognito user pool with a ListUsers filter.
type CognitoFinder struct {
	client     CognitoAPI
	userPoolID string
	attribute  string
}

func NewCognitoFinder(client CognitoAPI, userPoolID, attribute string) *CognitoFinder {
	if attribute == "" {
		attribute = DefaultAttribute
	}
	return &CognitoFinder{client: client, userPoolID: userPoolID, attribute: attribute}
}

// Filter renders the ListUsers filter for cpf. cpf must already be normalized
// to digits; it is interpolated into the filter expression.
func (f *CognitoFinder) Filter(cpf string) string {
	return fmt.Sprintf("%s = %q", f.attribute, cpf)
}

func (f *CognitoFinder) FindByCPF(ctx context.Context, cpf string) (*Record, error) {
	// limit 2 is enough to detect duplicates
	out, err := f.client.ListUsers(ctx, &cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(f.userPoolID),
		Filter:     aws.String(f.Filter(cpf)),
		Limit:      aws.Int32(2),
	})
	if err != nil {
		return nil, fmt.Errorf("list directory users: %w: %w", sentinel.ErrUnavailable, err)
	}
	switch len(out.Users) {
	case 0:
		return nil, sentinel.ErrNotFound
	case 1:
	default:
		return nil, sentinel.ErrDuplicate
	}

	user := out.Users[0]
	rec := &Record{
		Username:   aws.ToString(user.Username),
		Attributes: make(map[string]string, len(user.Attributes)),
	}
	for _, attr := range user.Attributes {
		rec.Attributes[aws.ToString(attr.Name)] = aws.ToString(attr.Value)
	}
	return rec, nil
}
