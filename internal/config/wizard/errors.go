package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errNameRequired      = errors.New("name is required")
	errNameInvalid       = errors.New("name must be 1-63 lowercase alphanumeric characters or hyphens, starting and ending with alphanumeric")
	errSizeInvalid       = errors.New("must be a positive whole number")
	errAccountInvalid    = errors.New("storage account must be 3-24 lowercase letters or digits")
	errRelativePath      = errors.New("must be a relative path")
	errBucketRequired    = errors.New("bucket is required for the s3 backend")
	errSubscriptionShape = errors.New("subscription must be a GUID")
)
