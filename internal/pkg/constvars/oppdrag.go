package constvars

// Alvorlighetsgrad is the coarse outcome classification stamped on every
// kvittering by the external payment system. Any value outside this set is
// treated the same as AlvorlighetsgradFeil.
const (
	AlvorlighetsgradOK          = "00"
	AlvorlighetsgradOKMedVarsel = "04"
	AlvorlighetsgradAvvist      = "08"
	AlvorlighetsgradFeil        = "12"
)

const (
	// AvstemmingMaxDetaljer is a hard limit of the external batch protocol:
	// a DATA message may carry at most this many detail records.
	AvstemmingMaxDetaljer = 70

	// AvstemmingIDLength is the fixed width of the external correlation id.
	AvstemmingIDLength = 22
)

const (
	AvstemmingAksjonStart = "START"
	AvstemmingAksjonData  = "DATA"
	AvstemmingAksjonAvsl  = "AVSL"
)

// Kravgrunnlag statuses share the external system's vocabulary. The
// overpayment recovery workflow that consumes them lives outside this
// service; the codes are kept here because they travel on the same
// correlation key (vedtakId).
const (
	KravgrunnlagStatusNy   = "NY"
	KravgrunnlagStatusEndr = "ENDR"
	KravgrunnlagStatusFeil = "FEIL"
	KravgrunnlagStatusManu = "MANU"
	KravgrunnlagStatusSper = "SPER"
	KravgrunnlagStatusBeha = "BEHA"
	KravgrunnlagStatusAvsl = "AVSL"
	KravgrunnlagStatusAnnu = "ANNU"
	KravgrunnlagStatusAnom = "ANOM"
)
