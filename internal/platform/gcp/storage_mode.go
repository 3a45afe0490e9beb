package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

// ObjectStorageMode selects where screenshot objects live.
type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
	ObjectStorageModeMemory      ObjectStorageMode = "memory"
)

var objectStorageModes = []ObjectStorageMode{
	ObjectStorageModeGCS,
	ObjectStorageModeGCSEmulator,
	ObjectStorageModeMemory,
}

func (m ObjectStorageMode) Supported() bool {
	for _, known := range objectStorageModes {
		if m == known {
			return true
		}
	}
	return false
}

func (m ObjectStorageMode) IsEmulator() bool { return m == ObjectStorageModeGCSEmulator }

type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	EmulatorHost string
	// InferredFromEmulatorHost is set when no mode was configured and the
	// emulator host picked gcs_emulator.
	InferredFromEmulatorHost bool
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool { return cfg.Mode.IsEmulator() }

// Source names how Mode was chosen, for bootstrap logs.
func (cfg ObjectStorageConfig) Source() string {
	if cfg.InferredFromEmulatorHost {
		return "emulator_host"
	}
	return "configured"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
)

type ObjectStorageConfigError struct {
	Code         ObjectStorageConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %v)", e.Mode, objectStorageModes)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q needs STORAGE_EMULATOR_HOST", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("STORAGE_EMULATOR_HOST=%q is not an absolute URL", e.EmulatorHost)
	default:
		return "invalid object storage config"
	}
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveObjectStorageConfig picks the storage mode. With no explicit mode,
// a configured emulator host selects gcs_emulator, otherwise gcs.
func ResolveObjectStorageConfig(rawMode, emulatorHost string) (ObjectStorageConfig, error) {
	cfg := ObjectStorageConfig{EmulatorHost: strings.TrimSpace(emulatorHost)}

	rawMode = strings.TrimSpace(rawMode)
	switch mode := ObjectStorageMode(strings.ToLower(rawMode)); {
	case mode == "" && cfg.EmulatorHost != "":
		cfg.Mode = ObjectStorageModeGCSEmulator
		cfg.InferredFromEmulatorHost = true
	case mode == "":
		cfg.Mode = ObjectStorageModeGCS
	case mode.Supported():
		cfg.Mode = mode
	default:
		return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: rawMode}
	}
	return cfg, ValidateObjectStorageConfig(cfg)
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	if !cfg.Mode.Supported() {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if !cfg.IsEmulatorMode() {
		return nil
	}
	if cfg.EmulatorHost == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ObjectStorageConfigError{
			Code:         ObjectStorageConfigErrorInvalidEmulatorHost,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
	}
	return nil
}
