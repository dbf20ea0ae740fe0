package guest

import "errors"

var errNoPartition = errors.New("device has no partition")
