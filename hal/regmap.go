package hal

// STM32F103 peripheral base addresses
const (
	TIM2Base   = 0x40000000
	TIM3Base   = 0x40000400
	TIM4Base   = 0x40000800
	AFIOBase   = 0x40010000
	EXTIBase   = 0x40010400
	GPIOABase  = 0x40010800
	GPIOBBase  = 0x40010C00
	GPIOCBase  = 0x40011000
	USART1Base = 0x40013800
	RCCBase    = 0x40021000
	FlashBase  = 0x40022000
	NVICBase   = 0xE000E100
)

// RCC register offsets
const (
	RCC_CR       = 0x00 // Clock control
	RCC_CFGR     = 0x04 // Clock configuration
	RCC_CIR      = 0x08 // Clock interrupt
	RCC_APB2RSTR = 0x0C // APB2 peripheral reset
	RCC_APB1RSTR = 0x10 // APB1 peripheral reset
	RCC_AHBENR   = 0x14 // AHB peripheral clock enable
	RCC_APB2ENR  = 0x18 // APB2 peripheral clock enable
	RCC_APB1ENR  = 0x1C // APB1 peripheral clock enable
	RCC_BDCR     = 0x20 // Backup domain control
	RCC_CSR      = 0x24 // Control/status
)

// RCC_CR bits
const (
	RCC_CR_HSION  = 1 << 0
	RCC_CR_HSIRDY = 1 << 1
	RCC_CR_HSEON  = 1 << 16
	RCC_CR_HSERDY = 1 << 17
	RCC_CR_HSEBYP = 1 << 18
	RCC_CR_CSSON  = 1 << 19
	RCC_CR_PLLON  = 1 << 24
	RCC_CR_PLLRDY = 1 << 25
)

// RCC_CFGR fields
const (
	RCC_CFGR_SW_Pos = 0
	RCC_CFGR_SW_Msk = 0x3 << RCC_CFGR_SW_Pos
	RCC_CFGR_SW_HSI = 0x0
	RCC_CFGR_SW_HSE = 0x1
	RCC_CFGR_SW_PLL = 0x2

	RCC_CFGR_SWS_Pos = 2
	RCC_CFGR_SWS_Msk = 0x3 << RCC_CFGR_SWS_Pos
	RCC_CFGR_SWS_HSI = 0x0
	RCC_CFGR_SWS_HSE = 0x1
	RCC_CFGR_SWS_PLL = 0x2

	RCC_CFGR_HPRE_Pos  = 4
	RCC_CFGR_HPRE_Msk  = 0xF << RCC_CFGR_HPRE_Pos
	RCC_CFGR_PPRE1_Pos = 8
	RCC_CFGR_PPRE1_Msk = 0x7 << RCC_CFGR_PPRE1_Pos
	RCC_CFGR_PPRE2_Pos = 11
	RCC_CFGR_PPRE2_Msk = 0x7 << RCC_CFGR_PPRE2_Pos

	// PPRE codes: 0xx = /1, 100 = /2, 101 = /4, 110 = /8, 111 = /16
	RCC_CFGR_PPRE_Div1 = 0x0
	RCC_CFGR_PPRE_Div2 = 0x4

	RCC_CFGR_PLLSRC   = 1 << 16 // 0: HSI/2, 1: HSE (after PLLXTPRE)
	RCC_CFGR_PLLXTPRE = 1 << 17 // HSE divided by 2 before the PLL

	RCC_CFGR_PLLMUL_Pos = 18
	RCC_CFGR_PLLMUL_Msk = 0xF << RCC_CFGR_PLLMUL_Pos
)

// RCC_APB2ENR bits
const (
	RCC_APB2ENR_AFIOEN   = 1 << 0
	RCC_APB2ENR_IOPAEN   = 1 << 2
	RCC_APB2ENR_IOPBEN   = 1 << 3
	RCC_APB2ENR_IOPCEN   = 1 << 4
	RCC_APB2ENR_USART1EN = 1 << 14
)

// RCC_APB1ENR bits
const (
	RCC_APB1ENR_TIM2EN = 1 << 0
	RCC_APB1ENR_TIM3EN = 1 << 1
	RCC_APB1ENR_TIM4EN = 1 << 2
)

// FLASH register offsets
const (
	FLASH_ACR     = 0x00 // Access control
	FLASH_KEYR    = 0x04
	FLASH_OPTKEYR = 0x08
	FLASH_SR      = 0x0C
	FLASH_CR      = 0x10
	FLASH_AR      = 0x14
	FLASH_OBR     = 0x1C
	FLASH_WRPR    = 0x20
)

// FLASH_ACR fields
const (
	FLASH_ACR_LATENCY_Pos = 0
	FLASH_ACR_LATENCY_Msk = 0x7 << FLASH_ACR_LATENCY_Pos
	FLASH_ACR_HLFCYA      = 1 << 3
	FLASH_ACR_PRFTBE      = 1 << 4
	FLASH_ACR_PRFTBS      = 1 << 5
)

// GPIO register offsets
const (
	GPIO_CRL  = 0x00 // Port configuration low (pins 0-7)
	GPIO_CRH  = 0x04 // Port configuration high (pins 8-15)
	GPIO_IDR  = 0x08 // Input data
	GPIO_ODR  = 0x0C // Output data
	GPIO_BSRR = 0x10 // Bit set/reset
	GPIO_BRR  = 0x14 // Bit reset
	GPIO_LCKR = 0x18 // Configuration lock
)

// GPIO pin configuration nibble: CNF[1:0] in bits 3:2, MODE[1:0] in bits 1:0
const (
	GPIO_CR_Msk = 0xF

	GPIO_MODE_Input    = 0x0
	GPIO_MODE_Out10MHz = 0x1
	GPIO_MODE_Out2MHz  = 0x2
	GPIO_MODE_Out50MHz = 0x3

	GPIO_CNF_OutPushPull  = 0x0 << 2
	GPIO_CNF_OutOpenDrain = 0x1 << 2
	GPIO_CNF_AltPushPull  = 0x2 << 2
	GPIO_CNF_AltOpenDrain = 0x3 << 2
	GPIO_CNF_InFloating   = 0x1 << 2

	GPIO_CR_ResetNibble   = GPIO_MODE_Input | GPIO_CNF_InFloating
	GPIO_CR_ResetValue    = 0x44444444
	GPIO_BSRR_ResetShift  = 16
	GPIO_PinsPerConfigReg = 8
	GPIO_BitsPerConfigPin = 4
)

// General-purpose timer (TIM2..TIM5) register offsets
const (
	TIM_CR1   = 0x00
	TIM_CR2   = 0x04
	TIM_SMCR  = 0x08
	TIM_DIER  = 0x0C
	TIM_SR    = 0x10
	TIM_EGR   = 0x14
	TIM_CCMR1 = 0x18
	TIM_CCMR2 = 0x1C
	TIM_CCER  = 0x20
	TIM_CNT   = 0x24
	TIM_PSC   = 0x28
	TIM_ARR   = 0x2C
	TIM_CCR1  = 0x34
	TIM_CCR2  = 0x38
	TIM_CCR3  = 0x3C
	TIM_CCR4  = 0x40
	TIM_DCR   = 0x48
	TIM_DMAR  = 0x4C
)

// Timer bit fields
const (
	TIM_CR1_CEN  = 1 << 0
	TIM_CR1_UDIS = 1 << 1
	TIM_CR1_URS  = 1 << 2
	TIM_CR1_OPM  = 1 << 3
	TIM_CR1_DIR  = 1 << 4
	TIM_CR1_ARPE = 1 << 7

	TIM_EGR_UG = 1 << 0
	TIM_SR_UIF = 1 << 0

	TIM_CCMR1_CC1S_Msk = 0x3
	TIM_CCMR1_OC1PE    = 1 << 3
	TIM_CCMR1_OC1M_Pos = 4
	TIM_CCMR1_OC1M_Msk = 0x7 << TIM_CCMR1_OC1M_Pos

	// Output compare modes
	TIM_OCM_Frozen        = 0x0
	TIM_OCM_ForceInactive = 0x4
	TIM_OCM_ForceActive   = 0x5
	TIM_OCM_PWM1          = 0x6
	TIM_OCM_PWM2          = 0x7

	TIM_CCER_CC1E = 1 << 0
	TIM_CCER_CC1P = 1 << 1

	// 16-bit counters on the F1 general-purpose timers
	TIM_MaxReload    = 0xFFFF
	TIM_MaxPrescaler = 0xFFFF
)

// USART register offsets
const (
	USART_SR   = 0x00
	USART_DR   = 0x04
	USART_BRR  = 0x08
	USART_CR1  = 0x0C
	USART_CR2  = 0x10
	USART_CR3  = 0x14
	USART_GTPR = 0x18
)

// USART bit fields
const (
	USART_SR_TC  = 1 << 6
	USART_SR_TXE = 1 << 7

	USART_CR1_RE = 1 << 2
	USART_CR1_TE = 1 << 3
	USART_CR1_UE = 1 << 13
)

// AFIO register offsets. Declared for completeness; nothing in the
// firmware remaps pins or routes EXTI lines.
const (
	AFIO_EVCR    = 0x00
	AFIO_MAPR    = 0x04
	AFIO_EXTICR1 = 0x08
	AFIO_EXTICR2 = 0x0C
	AFIO_EXTICR3 = 0x10
	AFIO_EXTICR4 = 0x14
	AFIO_MAPR2   = 0x1C
)

// EXTI register offsets (unused)
const (
	EXTI_IMR   = 0x00
	EXTI_EMR   = 0x04
	EXTI_RTSR  = 0x08
	EXTI_FTSR  = 0x0C
	EXTI_SWIER = 0x10
	EXTI_PR    = 0x14
)

// NVIC register offsets from NVICBase (unused)
const (
	NVIC_ISER = 0x000
	NVIC_ICER = 0x080
	NVIC_ISPR = 0x100
	NVIC_ICPR = 0x180
	NVIC_IPR  = 0x300

	NVIC_IRQWords = 2  // 60 interrupt lines on the F103 medium density parts
	NVIC_IPRWords = 15 // 8-bit priority per line, upper 4 bits implemented

	IRQ_EXTI3 = 9
)
