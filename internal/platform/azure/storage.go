package azure

import (
	"context"
	"fmt"
)

// StorageAccountKey returns the first access key of the storage account.
func (c *RealClient) StorageAccountKey(ctx context.Context, resourceGroup, account string) (string, error) {
	resp, err := c.accounts.ListKeys(ctx, resourceGroup, account, nil)
	if err != nil {
		return "", fmt.Errorf("failed to list keys of storage account %s: %w", account, err)
	}
	for _, k := range resp.Keys {
		if k != nil && k.Value != nil && *k.Value != "" {
			return *k.Value, nil
		}
	}
	return "", fmt.Errorf("storage account %s has no access keys", account)
}
