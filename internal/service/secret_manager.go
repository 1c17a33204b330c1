package service

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// SecretManagerService reads deployment secrets
type SecretManagerService interface {
	GetSecret(ctx context.Context, name string) (string, error)
	Close() error
}

type secretManagerService struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretManagerService(ctx context.Context, projectID string, opts ...option.ClientOption) (SecretManagerService, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set")
	}
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &secretManagerService{client: client, projectID: projectID}, nil
}

// secretVersionName accepts a bare secret id, "id/versions/N" or a full
// resource name and resolves it to a version resource.
func secretVersionName(projectID, name string) string {
	if strings.HasPrefix(name, "projects/") {
		if strings.Contains(name, "/versions/") {
			return name
		}
		return name + "/versions/latest"
	}
	if strings.Contains(name, "/versions/") {
		return fmt.Sprintf("projects/%s/secrets/%s", projectID, name)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name)
}

func (s *secretManagerService) GetSecret(ctx context.Context, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretVersionName(s.projectID, name),
	}
	result, err := s.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return strings.TrimSpace(string(result.Payload.Data)), nil
}

func (s *secretManagerService) Close() error {
	return s.client.Close()
}

// ResolveInferenceToken prefers the literal token and falls back to the
// named secret.
func ResolveInferenceToken(ctx context.Context, token, secretName string, secrets SecretManagerService) (string, error) {
	if token != "" || secretName == "" {
		return token, nil
	}
	if secrets == nil {
		return "", fmt.Errorf("inference token secret %q configured without Secret Manager", secretName)
	}
	return secrets.GetSecret(ctx, secretName)
}
