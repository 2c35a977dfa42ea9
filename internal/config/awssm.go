package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretsGetter is the slice of the Secrets Manager client used here.
type secretsGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// newSecretsClient is replaced in tests.
var newSecretsClient = func(ctx context.Context) (secretsGetter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// resolveAWSSecretsManager reads a credential stored as a plain string secret.
// Format: secret-name
func resolveAWSSecretsManager(ctx context.Context, ref string) (string, error) {
	client, err := newSecretsClient(ctx)
	if err != nil {
		return "", err
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref),
	})
	if err != nil {
		return "", fmt.Errorf("getting secret %q: %w", ref, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q has no string value (binary secrets not supported)", ref)
	}
	return *out.SecretString, nil
}
