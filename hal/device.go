package hal

// RCCType is the reset and clock control block
type RCCType struct {
	CR       Register
	CFGR     Register
	CIR      Register
	APB2RSTR Register
	APB1RSTR Register
	AHBENR   Register
	APB2ENR  Register
	APB1ENR  Register
	BDCR     Register
	CSR      Register
}

// FlashType is the flash memory interface block
type FlashType struct {
	ACR     Register
	KEYR    Register
	OPTKEYR Register
	SR      Register
	CR      Register
	AR      Register
	OBR     Register
	WRPR    Register
}

// GPIOType is one GPIO port block
type GPIOType struct {
	CRL  Register
	CRH  Register
	IDR  Register
	ODR  Register
	BSRR Register
	BRR  Register
	LCKR Register
}

// ConfigReg returns the configuration register (CRL or CRH) holding pin's
// 4-bit field, and the field's bit offset within it.
func (g *GPIOType) ConfigReg(pin uint8) (Register, uint8) {
	if pin < GPIO_PinsPerConfigReg {
		return g.CRL, pin * GPIO_BitsPerConfigPin
	}
	return g.CRH, (pin - GPIO_PinsPerConfigReg) * GPIO_BitsPerConfigPin
}

// TIMType is a general-purpose timer block (TIM2..TIM5)
type TIMType struct {
	CR1   Register
	CR2   Register
	SMCR  Register
	DIER  Register
	SR    Register
	EGR   Register
	CCMR1 Register
	CCMR2 Register
	CCER  Register
	CNT   Register
	PSC   Register
	ARR   Register
	CCR1  Register
	CCR2  Register
	CCR3  Register
	CCR4  Register
	DCR   Register
	DMAR  Register
}

// USARTType is a USART block
type USARTType struct {
	SR   Register
	DR   Register
	BRR  Register
	CR1  Register
	CR2  Register
	CR3  Register
	GTPR Register
}

// AFIOType is the alternate-function I/O block
type AFIOType struct {
	EVCR   Register
	MAPR   Register
	EXTICR [4]Register
	MAPR2  Register
}

// EXTIType is the external interrupt/event controller
type EXTIType struct {
	IMR   Register
	EMR   Register
	RTSR  Register
	FTSR  Register
	SWIER Register
	PR    Register
}

// NVICType is the Cortex-M3 nested vectored interrupt controller
type NVICType struct {
	ISER [NVIC_IRQWords]Register
	ICER [NVIC_IRQWords]Register
	ISPR [NVIC_IRQWords]Register
	ICPR [NVIC_IRQWords]Register
	IPR  [NVIC_IPRWords]Register
}

// Device holds one handle per peripheral block. Each block is owned by the
// firmware routine that configures it.
type Device struct {
	RCC    *RCCType
	FLASH  *FlashType
	GPIOA  *GPIOType
	GPIOB  *GPIOType
	TIM2   *TIMType
	TIM4   *TIMType
	USART1 *USARTType
	AFIO   *AFIOType
	EXTI   *EXTIType
	NVIC   *NVICType
}

// Binder returns the register living at addr. name is the register's
// datasheet name, e.g. "TIM2_CNT".
type Binder func(addr uintptr, name string) Register

// NewDevice builds a Device whose registers are obtained from bind.
func NewDevice(bind Binder) *Device {
	return &Device{
		RCC:    newRCC(bind),
		FLASH:  newFlash(bind),
		GPIOA:  newGPIO(bind, GPIOABase, "GPIOA"),
		GPIOB:  newGPIO(bind, GPIOBBase, "GPIOB"),
		TIM2:   newTIM(bind, TIM2Base, "TIM2"),
		TIM4:   newTIM(bind, TIM4Base, "TIM4"),
		USART1: newUSART(bind, USART1Base, "USART1"),
		AFIO:   newAFIO(bind),
		EXTI:   newEXTI(bind),
		NVIC:   newNVIC(bind),
	}
}

func newRCC(bind Binder) *RCCType {
	b := func(off uintptr, name string) Register {
		return bind(RCCBase+off, "RCC_"+name)
	}
	return &RCCType{
		CR:       b(RCC_CR, "CR"),
		CFGR:     b(RCC_CFGR, "CFGR"),
		CIR:      b(RCC_CIR, "CIR"),
		APB2RSTR: b(RCC_APB2RSTR, "APB2RSTR"),
		APB1RSTR: b(RCC_APB1RSTR, "APB1RSTR"),
		AHBENR:   b(RCC_AHBENR, "AHBENR"),
		APB2ENR:  b(RCC_APB2ENR, "APB2ENR"),
		APB1ENR:  b(RCC_APB1ENR, "APB1ENR"),
		BDCR:     b(RCC_BDCR, "BDCR"),
		CSR:      b(RCC_CSR, "CSR"),
	}
}

func newFlash(bind Binder) *FlashType {
	b := func(off uintptr, name string) Register {
		return bind(FlashBase+off, "FLASH_"+name)
	}
	return &FlashType{
		ACR:     b(FLASH_ACR, "ACR"),
		KEYR:    b(FLASH_KEYR, "KEYR"),
		OPTKEYR: b(FLASH_OPTKEYR, "OPTKEYR"),
		SR:      b(FLASH_SR, "SR"),
		CR:      b(FLASH_CR, "CR"),
		AR:      b(FLASH_AR, "AR"),
		OBR:     b(FLASH_OBR, "OBR"),
		WRPR:    b(FLASH_WRPR, "WRPR"),
	}
}

func newGPIO(bind Binder, base uintptr, port string) *GPIOType {
	b := func(off uintptr, name string) Register {
		return bind(base+off, port+"_"+name)
	}
	return &GPIOType{
		CRL:  b(GPIO_CRL, "CRL"),
		CRH:  b(GPIO_CRH, "CRH"),
		IDR:  b(GPIO_IDR, "IDR"),
		ODR:  b(GPIO_ODR, "ODR"),
		BSRR: b(GPIO_BSRR, "BSRR"),
		BRR:  b(GPIO_BRR, "BRR"),
		LCKR: b(GPIO_LCKR, "LCKR"),
	}
}

func newTIM(bind Binder, base uintptr, timer string) *TIMType {
	b := func(off uintptr, name string) Register {
		return bind(base+off, timer+"_"+name)
	}
	return &TIMType{
		CR1:   b(TIM_CR1, "CR1"),
		CR2:   b(TIM_CR2, "CR2"),
		SMCR:  b(TIM_SMCR, "SMCR"),
		DIER:  b(TIM_DIER, "DIER"),
		SR:    b(TIM_SR, "SR"),
		EGR:   b(TIM_EGR, "EGR"),
		CCMR1: b(TIM_CCMR1, "CCMR1"),
		CCMR2: b(TIM_CCMR2, "CCMR2"),
		CCER:  b(TIM_CCER, "CCER"),
		CNT:   b(TIM_CNT, "CNT"),
		PSC:   b(TIM_PSC, "PSC"),
		ARR:   b(TIM_ARR, "ARR"),
		CCR1:  b(TIM_CCR1, "CCR1"),
		CCR2:  b(TIM_CCR2, "CCR2"),
		CCR3:  b(TIM_CCR3, "CCR3"),
		CCR4:  b(TIM_CCR4, "CCR4"),
		DCR:   b(TIM_DCR, "DCR"),
		DMAR:  b(TIM_DMAR, "DMAR"),
	}
}

func newUSART(bind Binder, base uintptr, usart string) *USARTType {
	b := func(off uintptr, name string) Register {
		return bind(base+off, usart+"_"+name)
	}
	return &USARTType{
		SR:   b(USART_SR, "SR"),
		DR:   b(USART_DR, "DR"),
		BRR:  b(USART_BRR, "BRR"),
		CR1:  b(USART_CR1, "CR1"),
		CR2:  b(USART_CR2, "CR2"),
		CR3:  b(USART_CR3, "CR3"),
		GTPR: b(USART_GTPR, "GTPR"),
	}
}

func newAFIO(bind Binder) *AFIOType {
	b := func(off uintptr, name string) Register {
		return bind(AFIOBase+off, "AFIO_"+name)
	}
	return &AFIOType{
		EVCR: b(AFIO_EVCR, "EVCR"),
		MAPR: b(AFIO_MAPR, "MAPR"),
		EXTICR: [4]Register{
			b(AFIO_EXTICR1, "EXTICR1"),
			b(AFIO_EXTICR2, "EXTICR2"),
			b(AFIO_EXTICR3, "EXTICR3"),
			b(AFIO_EXTICR4, "EXTICR4"),
		},
		MAPR2: b(AFIO_MAPR2, "MAPR2"),
	}
}

func newEXTI(bind Binder) *EXTIType {
	b := func(off uintptr, name string) Register {
		return bind(EXTIBase+off, "EXTI_"+name)
	}
	return &EXTIType{
		IMR:   b(EXTI_IMR, "IMR"),
		EMR:   b(EXTI_EMR, "EMR"),
		RTSR:  b(EXTI_RTSR, "RTSR"),
		FTSR:  b(EXTI_FTSR, "FTSR"),
		SWIER: b(EXTI_SWIER, "SWIER"),
		PR:    b(EXTI_PR, "PR"),
	}
}

func newNVIC(bind Binder) *NVICType {
	n := &NVICType{}
	for i := 0; i < NVIC_IRQWords; i++ {
		off := uintptr(i * 4)
		idx := itoa(i)
		n.ISER[i] = bind(NVICBase+NVIC_ISER+off, "NVIC_ISER"+idx)
		n.ICER[i] = bind(NVICBase+NVIC_ICER+off, "NVIC_ICER"+idx)
		n.ISPR[i] = bind(NVICBase+NVIC_ISPR+off, "NVIC_ISPR"+idx)
		n.ICPR[i] = bind(NVICBase+NVIC_ICPR+off, "NVIC_ICPR"+idx)
	}
	for i := 0; i < NVIC_IPRWords; i++ {
		n.IPR[i] = bind(NVICBase+NVIC_IPR+uintptr(i*4), "NVIC_IPR"+itoa(i))
	}
	return n
}

// itoa converts a small non-negative int to a string without strconv
func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}
