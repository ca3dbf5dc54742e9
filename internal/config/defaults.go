package config

const (
	defaultConfigPath            = "~/.config/audiopilot/config.toml"
	defaultLibraryID             = "default"
	defaultStateDir              = "~/.local/share/audiopilot"
	defaultRoomsDir              = "~/audiopilot/rooms"
	defaultAudioDir              = "~/audiopilot/audio"
	defaultMinAutoFix            = 0.85
	defaultSlugThreshold         = 0.9
	defaultIndexThreshold        = 0.8
	defaultAutoRepairConfidence  = 85
	defaultSuggestThreshold      = 0.7
	defaultAutoRepairThreshold   = 0.85
	defaultDriftThreshold        = 0.8
	defaultAutoApprove           = 0.85
	defaultGovernanceApprove     = 0.70
	defaultIntegrityThreshold    = 60
	defaultHistoryLimit          = 20
	defaultRegenerationThreshold = 70
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Library: Library{ID: defaultLibraryID},
		Paths: Paths{
			StateDir: defaultStateDir,
			RoomsDir: defaultRoomsDir,
			AudioDir: defaultAudioDir,
		},
		Matcher: Matcher{
			MinAutoFix:           defaultMinAutoFix,
			SlugThreshold:        defaultSlugThreshold,
			IndexThreshold:       defaultIndexThreshold,
			AutoRepairConfidence: defaultAutoRepairConfidence,
		},
		Validation: Validation{
			SuggestThreshold:    defaultSuggestThreshold,
			AutoRepairThreshold: defaultAutoRepairThreshold,
		},
		Integrity: Integrity{DriftThreshold: defaultDriftThreshold},
		Governance: Governance{
			AutoApprove:        defaultAutoApprove,
			GovernanceApprove:  defaultGovernanceApprove,
			IntegrityThreshold: defaultIntegrityThreshold,
		},
		Autopilot: Autopilot{
			HistoryLimit:          defaultHistoryLimit,
			RegenerationThreshold: defaultRegenerationThreshold,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
