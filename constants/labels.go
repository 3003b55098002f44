package constants

// ClassLabels is the closed label set the image model scores against.
// Index order must match the model's output vector.
var ClassLabels = []string{
	"senior_genuine",
	"senior_counterfeit",
	"pwd_genuine",
	"pwd_counterfeit",
}

const (
	LabelSeniorGenuine     = "senior_genuine"
	LabelSeniorCounterfeit = "senior_counterfeit"
	LabelPWDGenuine        = "pwd_genuine"
	LabelPWDCounterfeit    = "pwd_counterfeit"
)
