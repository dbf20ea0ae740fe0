// Package config defines the typed configuration record of a provisioning
// workflow.
//
// A [Config] is read from azrunbook.yaml, overridden from the environment
// for secrets and account identifiers, completed with defaults and
// validated before any step runs. It replaces the global shell variables
// of a manual runbook with one explicit value passed to the workflow.
package config
