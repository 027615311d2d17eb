package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Serial     MSerialConfig     `yaml:"serial"`
	Rig        MRigConfig        `yaml:"rig"`
	Validation MValidationConfig `yaml:"validation"`
	Storage    MStorageConfig    `yaml:"storage"`
	Output     MOutputConfig     `yaml:"output"`
}

type MSerialConfig struct {
	Endpoint         string `yaml:"endpoint"`
	Baud             int    `yaml:"baud"`
	ReadTimeoutMs    int    `yaml:"read_timeout_ms"`
	BootGraceSeconds int    `yaml:"boot_grace_seconds"`
	AutoDetect       bool   `yaml:"auto_detect"`
}

type MRigConfig struct {
	// TravelMM is the full stage travel used by the duration estimator.
	TravelMM            float64 `yaml:"travel_mm"`
	SettleMarginSeconds float64 `yaml:"settle_margin_seconds"`
	ReturnBufferSeconds float64 `yaml:"return_buffer_seconds"`
	MonitorBufferSize   int     `yaml:"monitor_buffer_size"`
}

type MValidationConfig struct {
	// MinPeakForceN is the empirical "implausibly low" threshold; a run whose
	// peak stays below it despite MinSamples samples is flagged, not rejected.
	MinPeakForceN float64 `yaml:"min_peak_force_n"`
	MinSamples    int     `yaml:"min_samples"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MOutputConfig struct {
	Dir     string `yaml:"dir"`
	Excel   bool   `yaml:"excel"`
	CSV     bool   `yaml:"csv"`
	Summary bool   `yaml:"summary"`
}
