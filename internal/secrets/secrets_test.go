package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSM struct {
	secrets map[string]string
	err     error
	calls   []string
}

func (f *fakeSM) GetSecretValue(_ context.Context, input *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls = append(f.calls, *input.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	val, ok := f.secrets[*input.SecretId]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(val)}, nil
}

func TestResolve_Literal(t *testing.T) {
	r := NewResolver()

	got, err := r.Resolve(context.Background(), "sk-literal-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-literal-key", got)
}

func TestResolve_Empty(t *testing.T) {
	r := NewResolver()

	got, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve_Env(t *testing.T) {
	t.Setenv("CITEWATCH_TEST_KEY", "from-env")
	r := NewResolver()

	got, err := r.Resolve(context.Background(), "env:CITEWATCH_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestResolve_EnvUnsetIsError(t *testing.T) {
	r := NewResolver()

	_, err := r.Resolve(context.Background(), "env:CITEWATCH_DEFINITELY_UNSET")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CITEWATCH_DEFINITELY_UNSET is not set")
}

func TestResolve_SecretsManager(t *testing.T) {
	fake := &fakeSM{secrets: map[string]string{"prod/openai": "sk-from-sm"}}
	r := NewResolverWithClient(fake)

	got, err := r.Resolve(context.Background(), "aws-sm://prod/openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-sm", got)
	assert.Equal(t, []string{"prod/openai"}, fake.calls)
}

func TestResolve_SecretsManagerJSONKey(t *testing.T) {
	fake := &fakeSM{secrets: map[string]string{
		"prod/platform-keys": `{"openai": "sk-oai", "gemini": "gk-gem"}`,
	}}
	r := NewResolverWithClient(fake)

	got, err := r.Resolve(context.Background(), "aws-sm://prod/platform-keys#gemini")
	require.NoError(t, err)
	assert.Equal(t, "gk-gem", got)
}

func TestResolve_SecretsManagerMissingJSONKey(t *testing.T) {
	fake := &fakeSM{secrets: map[string]string{"s": `{"a": "1"}`}}
	r := NewResolverWithClient(fake)

	_, err := r.Resolve(context.Background(), "aws-sm://s#b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no key "b"`)
}

func TestResolve_SecretsManagerNonJSONWithKey(t *testing.T) {
	fake := &fakeSM{secrets: map[string]string{"s": "just-a-string"}}
	r := NewResolverWithClient(fake)

	_, err := r.Resolve(context.Background(), "aws-sm://s#key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")
}

func TestResolve_SecretsManagerErrorPropagates(t *testing.T) {
	fake := &fakeSM{err: errors.New("AccessDeniedException")}
	r := NewResolverWithClient(fake)

	_, err := r.Resolve(context.Background(), "aws-sm://prod/openai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching secret prod/openai")
}
