// internal/platform/di/secret_provider_sm.go
package di

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var errSecretNameEmpty = errors.New("di: secret resource name is empty")

// resolveSendGridKey は SendGrid の API キーを Secret Manager から取得します。
// name は "projects/{p}/secrets/{s}/versions/{v}" 形式のフルリソース名。
// versions が省略されたときは latest を読みます。
func resolveSendGridKey(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errSecretNameEmpty
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}

	sm, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("di: secretmanager client: %w", err)
	}
	defer sm.Close()

	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("di: AccessSecretVersion (%s): %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("di: empty secret payload (%s)", name)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}
