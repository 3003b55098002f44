package classifier

import (
	"fmt"
	"strings"

	"github.com/pasecure/idverify/constants"
)

// ResolveStatus maps a class label to the record status: genuine classes
// verify, counterfeit classes flag. An unknown label is an error so a model
// retrained with a different label set fails loudly instead of mislabeling.
func ResolveStatus(label string) (constants.VerificationStatus, error) {
	switch label {
	case constants.LabelSeniorGenuine, constants.LabelPWDGenuine:
		return constants.StatusVerified, nil
	case constants.LabelSeniorCounterfeit, constants.LabelPWDCounterfeit:
		return constants.StatusFlagged, nil
	default:
		return "", fmt.Errorf("unknown class label %q", label)
	}
}

// TypeFromLabel derives the document type the model saw from the label
// prefix.
func TypeFromLabel(label string) (constants.IDType, error) {
	switch {
	case strings.HasPrefix(label, "senior_"):
		return constants.IDTypeSeniorCitizen, nil
	case strings.HasPrefix(label, "pwd_"):
		return constants.IDTypePWD, nil
	default:
		return "", fmt.Errorf("unknown class label %q", label)
	}
}
