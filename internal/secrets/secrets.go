// Package secrets resolves credential references into API keys.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Reference prefixes.
const (
	envPrefix   = "env:"
	awsSMPrefix = "aws-sm://"
)

// SMAPI is the subset of the Secrets Manager client used by Resolver.
type SMAPI interface {
	GetSecretValue(ctx context.Context, input *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolver resolves credential references. Supported forms:
//
//	literal            used as-is
//	env:NAME           read from the environment
//	aws-sm://name      AWS Secrets Manager secret string
//	aws-sm://name#key  JSON key within the secret string
type Resolver struct {
	mu sync.Mutex
	sm SMAPI
}

// NewResolver creates a Resolver. The Secrets Manager client is built
// lazily on first aws-sm reference.
func NewResolver() *Resolver {
	return &Resolver{}
}

// NewResolverWithClient creates a Resolver with a caller-supplied Secrets
// Manager client. Used in tests.
func NewResolverWithClient(sm SMAPI) *Resolver {
	return &Resolver{sm: sm}
}

// Resolve returns the credential value for a reference.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, envPrefix):
		name := strings.TrimPrefix(ref, envPrefix)
		val := os.Getenv(name)
		if val == "" {
			return "", fmt.Errorf("environment variable %s is not set", name)
		}
		return val, nil
	case strings.HasPrefix(ref, awsSMPrefix):
		return r.resolveSM(ctx, strings.TrimPrefix(ref, awsSMPrefix))
	default:
		return ref, nil
	}
}

func (r *Resolver) resolveSM(ctx context.Context, ref string) (string, error) {
	name := ref
	jsonKey := ""
	if idx := strings.IndexByte(ref, '#'); idx >= 0 {
		name, jsonKey = ref[:idx], ref[idx+1:]
	}

	client, err := r.client(ctx)
	if err != nil {
		return "", err
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &name,
	})
	if err != nil {
		return "", fmt.Errorf("fetching secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}

	if jsonKey == "" {
		return *out.SecretString, nil
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &fields); err != nil {
		return "", fmt.Errorf("secret %s is not a JSON object: %w", name, err)
	}
	val, ok := fields[jsonKey]
	if !ok {
		return "", fmt.Errorf("secret %s has no key %q", name, jsonKey)
	}
	return val, nil
}

func (r *Resolver) client(ctx context.Context) (SMAPI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sm != nil {
		return r.sm, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	r.sm = secretsmanager.NewFromConfig(cfg)
	return r.sm, nil
}
