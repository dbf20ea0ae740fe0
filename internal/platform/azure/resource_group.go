package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// EnsureResourceGroup ensures the resource group exists in location.
func (c *RealClient) EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) (Resource, error) {
	rg, created, err := (&ensureOperation[armresources.ResourceGroup]{
		Kind: "resource group",
		Name: name,
		Get: func(ctx context.Context) (armresources.ResourceGroup, error) {
			resp, err := c.groups.Get(ctx, name, nil)
			return resp.ResourceGroup, err
		},
		Validate: func(rg armresources.ResourceGroup) error {
			if !sameLocation(derefString(rg.Location), location) {
				return fmt.Errorf("resource group %s exists in %s, not %s", name, derefString(rg.Location), location)
			}
			return nil
		},
		Create: func(ctx context.Context) (armresources.ResourceGroup, error) {
			resp, err := c.groups.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
				Location: to.Ptr(location),
				Tags:     tagPtrs(tags),
			}, nil)
			return resp.ResourceGroup, err
		},
	}).Execute(ctx)
	if err != nil {
		return Resource{}, err
	}
	return Resource{Kind: "resourceGroup", Name: name, ID: derefString(rg.ID), Created: created}, nil
}

// sameLocation compares ARM location names, which the API returns
// lowercased without spaces.
func sameLocation(a, b string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, " ", ""))
	}
	return norm(a) == norm(b)
}
