package domain

import "time"

// Default acquisition settings.
const (
	DefaultEnableHighAccuracy = true
	DefaultTimeout            = 5 * time.Second
	DefaultMaximumAge         = time.Duration(0)
)

// AcquisitionOptions is the fully populated option set passed to a platform.
type AcquisitionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// OptionOverrides holds caller-supplied options. A nil field means the caller
// did not set it and the default applies.
type OptionOverrides struct {
	EnableHighAccuracy *bool
	Timeout            *time.Duration
	MaximumAge         *time.Duration
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() AcquisitionOptions {
	return AcquisitionOptions{
		EnableHighAccuracy: DefaultEnableHighAccuracy,
		Timeout:            DefaultTimeout,
		MaximumAge:         DefaultMaximumAge,
	}
}

// ResolveOptions merges overrides onto the defaults field by field. A nil
// overrides value yields the defaults. An explicit EnableHighAccuracy=false
// is kept. A non-positive Timeout falls back to the default and a negative
// MaximumAge is clamped to zero.
func ResolveOptions(o *OptionOverrides) AcquisitionOptions {
	opts := DefaultOptions()
	if o == nil {
		return opts
	}
	if o.EnableHighAccuracy != nil {
		opts.EnableHighAccuracy = *o.EnableHighAccuracy
	}
	if o.Timeout != nil && *o.Timeout > 0 {
		opts.Timeout = *o.Timeout
	}
	if o.MaximumAge != nil && *o.MaximumAge > 0 {
		opts.MaximumAge = *o.MaximumAge
	}
	return opts
}
