package i18n

// Message IDs. Validation keys live in pkg/domain alongside the errors that carry them.
const (
	AppTitle = "app.title"
	AppHint  = "app.hint"

	HomeLead  = "home.lead"
	HomeStart = "home.start"

	InputHeading   = "input.heading"
	InputName      = "input.name"
	InputBirthday  = "input.birthday"
	InputBloodType = "input.blood_type"
	InputToday     = "input.today"
	InputSubmit    = "input.submit"

	LoadingMessage = "loading.message"

	ResultHeading       = "result.heading"
	ResultCapital       = "result.capital"
	ResultCitizenDay    = "result.citizen_day"
	ResultCoastline     = "result.coastline"
	ResultCoastlineYes  = "result.coastline_yes"
	ResultCoastlineNo   = "result.coastline_no"
	ResultLogo          = "result.logo"
	ResultBrief         = "result.brief"
	ResultRestart       = "result.restart"
	ResultSaved         = "result.saved"
	ResultPersistFailed = "result.persist_failed"
	ResultNoneSaved     = "result.none_saved"

	ErrorMessage         = "error.message"
	ErrorRetry           = "error.retry"
	ErrorInFlight        = "error.in_flight"
	ErrorNotAllowed      = "error.not_allowed"
	ErrorRateLimited     = "error.rate_limited"
	ErrorSessionNotFound = "error.session_not_found"
)
