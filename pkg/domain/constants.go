package domain

// Message keys shared by validation errors and the localised catalogues.
const (
	MsgNameRequired     = "validation.name_required"
	MsgInvalidBirthday  = "validation.invalid_birthday"
	MsgInvalidBloodType = "validation.invalid_blood_type"
	MsgInvalidToday     = "validation.invalid_today"
)
