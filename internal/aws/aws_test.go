package awsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSecretsManager struct {
	mock.Mock
}

func (m *MockSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*secretsmanager.GetSecretValueOutput)
	return out, args.Error(1)
}

func TestGetSecretString(t *testing.T) {
	client := new(MockSecretsManager)
	client.On("GetSecretValue", mock.Anything, mock.MatchedBy(func(in *secretsmanager.GetSecretValueInput) bool {
		return aws.ToString(in.SecretId) == "todo-db"
	})).Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("postgres://db")}, nil)

	value, err := GetSecretString(context.Background(), client, "todo-db")
	require.NoError(t, err)
	assert.Equal(t, "postgres://db", value)
	client.AssertExpectations(t)
}

func TestGetSecretStringAPIError(t *testing.T) {
	client := new(MockSecretsManager)
	apiErr := &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "not found"}
	client.On("GetSecretValue", mock.Anything, mock.Anything).Return(nil, apiErr)

	_, err := GetSecretString(context.Background(), client, "missing")
	assert.ErrorContains(t, err, "ResourceNotFoundException")
	assert.True(t, errors.Is(err, apiErr))
}

func TestGetSecretStringBinarySecret(t *testing.T) {
	client := new(MockSecretsManager)
	client.On("GetSecretValue", mock.Anything, mock.Anything).
		Return(&secretsmanager.GetSecretValueOutput{SecretBinary: []byte{1, 2, 3}}, nil)

	_, err := GetSecretString(context.Background(), client, "binary")
	assert.Error(t, err)
}
