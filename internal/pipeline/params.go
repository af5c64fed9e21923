package pipeline

import "fmt"

// Params holds the tunable constants of the filter chain.
type Params struct {
	// BlurKernel is the side of the Gaussian smoothing kernel. Odd, >= 1.
	BlurKernel int `mapstructure:"blur_kernel" json:"blur_kernel"`

	// BlockSize is the side of the adaptive threshold neighbourhood. Odd, >= 3.
	BlockSize int `mapstructure:"block_size" json:"block_size"`

	// OffsetC is subtracted from the local mean before comparison.
	OffsetC float64 `mapstructure:"offset_c" json:"offset_c"`

	// CannyLow and CannyHigh are the hysteresis thresholds.
	CannyLow  float64 `mapstructure:"canny_low" json:"canny_low"`
	CannyHigh float64 `mapstructure:"canny_high" json:"canny_high"`

	// CloseKernel is the side of the square closing element. Odd, >= 1.
	CloseKernel int `mapstructure:"close_kernel" json:"close_kernel"`
}

// DefaultParams returns the standard chain constants.
func DefaultParams() Params {
	return Params{
		BlurKernel:  5,
		BlockSize:   11,
		OffsetC:     2,
		CannyLow:    50,
		CannyHigh:   150,
		CloseKernel: 5,
	}
}

// Validate checks that the parameters describe a runnable chain.
func (p Params) Validate() error {
	if p.BlurKernel < 1 || p.BlurKernel%2 == 0 {
		return fmt.Errorf("blur_kernel must be a positive odd number, got %d", p.BlurKernel)
	}
	if p.BlockSize < 3 || p.BlockSize%2 == 0 {
		return fmt.Errorf("block_size must be an odd number >= 3, got %d", p.BlockSize)
	}
	if p.CloseKernel < 1 || p.CloseKernel%2 == 0 {
		return fmt.Errorf("close_kernel must be a positive odd number, got %d", p.CloseKernel)
	}
	if p.CannyLow < 0 || p.CannyHigh < 0 {
		return fmt.Errorf("canny thresholds must be non-negative, got %v/%v", p.CannyLow, p.CannyHigh)
	}
	if p.CannyLow > p.CannyHigh {
		return fmt.Errorf("canny_low (%v) must not exceed canny_high (%v)", p.CannyLow, p.CannyHigh)
	}
	return nil
}
