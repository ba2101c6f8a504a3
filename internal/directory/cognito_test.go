package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpfgate/pkg/platform/sentinel"
)

type stubCognito struct {
	in    *cognitoidentityprovider.ListUsersInput
	users []types.UserType
	err   error
}

func (s *stubCognito) ListUsers(_ context.Context, in *cognitoidentityprovider.ListUsersInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ListUsersOutput, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	return &cognitoidentityprovider.ListUsersOutput{Users: s.users}, nil
}

func user(name, cpf string) types.UserType {
	return types.UserType{
		Username: aws.String(name),
		Attributes: []types.AttributeType{
			{Name: aws.String("custom:cpf"), Value: aws.String(cpf)},
			{Name: aws.String("email"), Value: aws.String(name + "@example.com")},
		},
	}
}

func TestCognitoFinder(t *testing.T) {
	ctx := context.Background()

	t.Run("single match", func(t *testing.T) {
		stub := &stubCognito{users: []types.UserType{user("maria", "52998224725")}}
		rec, err := NewCognitoFinder(stub, "pool-1", "").FindByCPF(ctx, "52998224725")
		require.NoError(t, err)
		assert.Equal(t, "maria", rec.Username)
		assert.Equal(t, "maria@example.com", rec.Attributes["email"])

		assert.Equal(t, "pool-1", aws.ToString(stub.in.UserPoolId))
		assert.Equal(t, `custom:cpf = "52998224725"`, aws.ToString(stub.in.Filter))
		assert.Equal(t, int32(2), aws.ToInt32(stub.in.Limit))
	})

	t.Run("no match", func(t *testing.T) {
		_, err := NewCognitoFinder(&stubCognito{}, "pool-1", "").FindByCPF(ctx, "52998224725")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("duplicate", func(t *testing.T) {
		stub := &stubCognito{users: []types.UserType{user("a", "1"), user("b", "1")}}
		_, err := NewCognitoFinder(stub, "pool-1", "").FindByCPF(ctx, "52998224725")
		assert.ErrorIs(t, err, sentinel.ErrDuplicate)
	})

	t.Run("client error", func(t *testing.T) {
		stub := &stubCognito{err: errors.New("ResourceNotFoundException")}
		_, err := NewCognitoFinder(stub, "pool-1", "").FindByCPF(ctx, "52998224725")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("custom attribute", func(t *testing.T) {
		f := NewCognitoFinder(&stubCognito{}, "pool-1", "custom:tax_id")
		assert.Equal(t, `custom:tax_id = "52998224725"`, f.Filter("52998224725"))
	})
}
