package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// LocationOption represents an Azure region.
type LocationOption struct {
	Value       string
	Label       string
	Description string
}

// VMSizeOption represents an Azure VM size.
type VMSizeOption struct {
	Value       string
	Label       string
	Description string
}

// Locations contains commonly used Azure regions.
var Locations = []LocationOption{
	{Value: "westeurope", Label: "westeurope", Description: "Netherlands"},
	{Value: "northeurope", Label: "northeurope", Description: "Ireland"},
	{Value: "germanywestcentral", Label: "germanywestcentral", Description: "Frankfurt, Germany"},
	{Value: "uksouth", Label: "uksouth", Description: "London, UK"},
	{Value: "eastus", Label: "eastus", Description: "Virginia, USA"},
	{Value: "eastus2", Label: "eastus2", Description: "Virginia, USA"},
	{Value: "westus2", Label: "westus2", Description: "Washington, USA"},
	{Value: "southeastasia", Label: "southeastasia", Description: "Singapore"},
}

// VMSizes contains recommended VM sizes.
var VMSizes = []VMSizeOption{
	{Value: "Standard_D2s_v3", Label: "Standard_D2s_v3", Description: "2 vCPU, 8GB RAM"},
	{Value: "Standard_D4s_v3", Label: "Standard_D4s_v3", Description: "4 vCPU, 16GB RAM"},
	{Value: "Standard_D8s_v3", Label: "Standard_D8s_v3", Description: "8 vCPU, 32GB RAM"},
	{Value: "Standard_E4s_v3", Label: "Standard_E4s_v3", Description: "4 vCPU, 32GB RAM (memory optimized)"},
	{Value: "Standard_E8s_v3", Label: "Standard_E8s_v3", Description: "8 vCPU, 64GB RAM (memory optimized)"},
	{Value: "Standard_F8s_v2", Label: "Standard_F8s_v2", Description: "8 vCPU, 16GB RAM (compute optimized)"},
}

// DiskSKUOptions contains the managed disk types usable as data disk.
var DiskSKUOptions = []huh.Option[string]{
	huh.NewOption("Premium SSD (Premium_LRS)", "Premium_LRS"),
	huh.NewOption("Standard SSD (StandardSSD_LRS)", "StandardSSD_LRS"),
	huh.NewOption("Standard HDD (Standard_LRS)", "Standard_LRS"),
}

// StateBackend values offered by the wizard.
const (
	StateLocal = "local"
	StateS3    = "s3"
)

// StateBackendOptions contains the state backends.
var StateBackendOptions = []huh.Option[string]{
	huh.NewOption("Local file (single operator)", StateLocal),
	huh.NewOption("S3 bucket (shared, locked)", StateS3),
}

// LocationsToOptions converts Locations to huh options.
func LocationsToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Locations))
	for i, loc := range Locations {
		opts[i] = huh.NewOption(fmt.Sprintf("%s (%s)", loc.Label, loc.Description), loc.Value)
	}
	return opts
}

// VMSizesToOptions converts VMSizes to huh options.
func VMSizesToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(VMSizes))
	for i, s := range VMSizes {
		opts[i] = huh.NewOption(fmt.Sprintf("%s - %s", s.Label, s.Description), s.Value)
	}
	return opts
}
