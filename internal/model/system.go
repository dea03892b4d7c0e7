package model

// StoreVersions is a consistent pair of store versions. Any change to holdings or
// records bumps Records; any NAV write bumps NAV.
type StoreVersions struct {
	Records int64 `json:"records"`
	NAV     int64 `json:"nav"`
}

// VersionInfo contains version and schema information for the application.
type VersionInfo struct {
	AppVersion       string        `json:"app_version"`
	DbVersion        string        `json:"db_version"`
	MigrationNeeded  bool          `json:"migration_needed"`
	MigrationMessage *string       `json:"migration_message,omitempty"`
	StoreVersions    StoreVersions `json:"store_versions"`
}
