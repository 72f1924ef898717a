package core

import "errors"

// Clock limits for the STM32F103
const (
	HSIFrequency    = 8000000
	MinHSEFrequency = 4000000
	MaxHSEFrequency = 16000000
	MaxSysClock     = 72000000
	MaxAPB1Clock    = 36000000

	MinPLLMultiplier = 2
	MaxPLLMultiplier = 16

	// DelayTickHz is the delay timer tick rate: one count per millisecond
	DelayTickHz = 1000
)

// ErrInvalidConfig is wrapped by every configuration validation error
var ErrInvalidConfig = errors.New("invalid config")

// ConfigError reports which configuration field is out of range
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + e.Field + " " + e.Reason
}

// Unwrap lets errors.Is match ErrInvalidConfig
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Config holds the boot-time parameters of the firmware.
// It is read once by Boot; nothing is reconfigured at runtime.
type Config struct {
	HSEFrequency  uint32 `json:"hse_frequency"`    // External oscillator, Hz
	PLLMultiplier uint32 `json:"pll_multiplier"`   // SYSCLK = HSE * PLLMultiplier
	PWMTickHz     uint32 `json:"pwm_tick_hz"`      // PWM timer tick rate
	PWMPeriod     uint32 `json:"pwm_period_ticks"` // PWM period in PWM ticks
	PWMDuty       uint32 `json:"pwm_duty_ticks"`   // High time per period in PWM ticks
	BlinkHoldMs   uint32 `json:"blink_hold_ms"`    // Hold time of each blink step
	Console       bool   `json:"console"`          // Boot log on USART1 TX (PA9)
	ConsoleBaud   uint32 `json:"console_baud"`
}

// DefaultConfig returns the production configuration: 8 MHz HSE through a
// x4 PLL (32 MHz), 1 ms delay ticks, 10 kHz PWM at 80% duty, 1 s blinks.
func DefaultConfig() Config {
	return Config{
		HSEFrequency:  8000000,
		PLLMultiplier: 4,
		PWMTickHz:     1000000,
		PWMPeriod:     100,
		PWMDuty:       80,
		BlinkHoldMs:   1000,
		Console:       false,
		ConsoleBaud:   115200,
	}
}

// Validate checks that every derived register value fits its hardware field
func (c Config) Validate() error {
	if c.HSEFrequency < MinHSEFrequency || c.HSEFrequency > MaxHSEFrequency {
		return &ConfigError{"hse_frequency", "must be within 4-16 MHz"}
	}
	if c.PLLMultiplier < MinPLLMultiplier || c.PLLMultiplier > MaxPLLMultiplier {
		return &ConfigError{"pll_multiplier", "must be within 2-16"}
	}
	if c.SysClock() > MaxSysClock {
		return &ConfigError{"pll_multiplier", "drives SYSCLK above 72 MHz"}
	}

	if err := checkTick("pll_multiplier", c.TimerClock(), DelayTickHz); err != nil {
		return err
	}
	if err := checkTick("pwm_tick_hz", c.TimerClock(), c.PWMTickHz); err != nil {
		return err
	}

	if c.PWMPeriod < 2 || c.PWMPeriod > 0x10000 {
		return &ConfigError{"pwm_period_ticks", "must be within 2-65536"}
	}
	// Auto-reload must exceed the compare value
	if c.PWMDuty >= c.PWMPeriod {
		return &ConfigError{"pwm_duty_ticks", "must be below pwm_period_ticks"}
	}

	if c.BlinkHoldMs == 0 {
		return &ConfigError{"blink_hold_ms", "must be positive"}
	}

	if c.Console {
		if c.ConsoleBaud == 0 {
			return &ConfigError{"console_baud", "must be positive"}
		}
		if brr := c.ConsoleBRR(); brr < 16 || brr > 0xFFFF {
			return &ConfigError{"console_baud", "is not reachable from PCLK2"}
		}
	}

	return nil
}

// checkTick verifies that tickHz divides clock exactly into a 16-bit prescaler
func checkTick(field string, clock, tickHz uint32) error {
	if tickHz == 0 || tickHz > clock {
		return &ConfigError{field, "must be within 1 Hz and the timer clock"}
	}
	if clock%tickHz != 0 {
		return &ConfigError{field, "does not divide the timer clock"}
	}
	if clock/tickHz-1 > 0xFFFF {
		return &ConfigError{field, "needs a prescaler above 65535"}
	}
	return nil
}

// SysClock returns the SYSCLK frequency once the PLL is selected
func (c Config) SysClock() uint32 {
	return c.HSEFrequency * c.PLLMultiplier
}

// PLLMulCode returns the RCC_CFGR PLLMUL field value (x2 is 0b0000)
func (c Config) PLLMulCode() uint32 {
	return c.PLLMultiplier - 2
}

// FlashLatency returns the flash wait states required at SysClock
func (c Config) FlashLatency() uint32 {
	switch sys := c.SysClock(); {
	case sys <= 24000000:
		return 0
	case sys <= 48000000:
		return 1
	default:
		return 2
	}
}

// APB1Divider returns the APB1 prescaler keeping PCLK1 within 36 MHz
func (c Config) APB1Divider() uint32 {
	if c.SysClock() > MaxAPB1Clock {
		return 2
	}
	return 1
}

// TimerClock returns the TIM2/TIM4 kernel clock. When APB1 is divided the
// timers run at twice PCLK1, so this is SYSCLK either way.
func (c Config) TimerClock() uint32 {
	pclk1 := c.SysClock() / c.APB1Divider()
	if c.APB1Divider() == 1 {
		return pclk1
	}
	return pclk1 * 2
}

// DelayPrescaler returns the TIM2 prescaler giving DelayTickHz
func (c Config) DelayPrescaler() uint32 {
	return c.TimerClock()/DelayTickHz - 1
}

// PWMPrescaler returns the TIM4 prescaler giving PWMTickHz
func (c Config) PWMPrescaler() uint32 {
	return c.TimerClock()/c.PWMTickHz - 1
}

// PWMReload returns the TIM4 auto-reload value (period - 1)
func (c Config) PWMReload() uint32 {
	return c.PWMPeriod - 1
}

// PWMCompare returns the TIM4 channel 1 compare value
func (c Config) PWMCompare() uint32 {
	return c.PWMDuty
}

// PWMFrequency returns the PWM output frequency in Hz
func (c Config) PWMFrequency() uint32 {
	return c.PWMTickHz / c.PWMPeriod
}

// PWMDutyPercent returns the PWM duty ratio in whole percent
func (c Config) PWMDutyPercent() uint32 {
	return c.PWMDuty * 100 / c.PWMPeriod
}

// ConsoleBRR returns the USART1 baud rate register value. USART1 sits on
// APB2, which runs undivided at SYSCLK.
func (c Config) ConsoleBRR() uint32 {
	return (c.SysClock() + c.ConsoleBaud/2) / c.ConsoleBaud
}
