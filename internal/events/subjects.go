package events

const (
	SubjectScoreComputed   = "comorbid.score.computed"
	SubjectMappingReloaded = "comorbid.mapping.reloaded"
)
