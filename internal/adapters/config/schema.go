package config

// Settingsfile represents the structure of the inherit.yaml settings file.
type Settingsfile struct {
	ExcludePackages     []string `yaml:"exclude_packages"`
	ExcludeDependencies []string `yaml:"exclude_dependencies"`
	FailOnConflict      bool     `yaml:"fail_on_conflict"`
}
