// Package wizard provides an interactive configuration wizard for azrunbook.
//
// It uses charmbracelet/huh for form-based input collection. RunWizard
// asks the question groups and returns a WizardResult; BuildConfig turns
// the result into a config.Config and WriteConfig writes the YAML file.
package wizard
