package models

// Label is a human-readable kinship label from a viewer to a target.
type Label string

// LabelNone means no relationship rule matched.
const LabelNone Label = ""

const (
	LabelMother        Label = "Mother"
	LabelFather        Label = "Father"
	LabelMotherInLaw   Label = "Mother-in-law"
	LabelFatherInLaw   Label = "Father-in-law"
	LabelStepmother    Label = "Stepmother"
	LabelStepfather    Label = "Stepfather"
	LabelDaughter      Label = "Daughter"
	LabelSon           Label = "Son"
	LabelDaughterInLaw Label = "Daughter-in-law"
	LabelSonInLaw      Label = "Son-in-law"
	LabelStepdaughter  Label = "Stepdaughter"
	LabelStepson       Label = "Stepson"

	LabelSisterInLaw      Label = "Sister-in-law"
	LabelBrotherInLaw     Label = "Brother-in-law"
	LabelStepSisterInLaw  Label = "Step-sister-in-law"
	LabelStepBrotherInLaw Label = "Step-brother-in-law"

	LabelSister      Label = "Sister"
	LabelBrother     Label = "Brother"
	LabelStepsister  Label = "Stepsister"
	LabelStepbrother Label = "Stepbrother"

	LabelGrandmother   Label = "Grandmother"
	LabelGrandfather   Label = "Grandfather"
	LabelGranddaughter Label = "Granddaughter"
	LabelGrandson      Label = "Grandson"

	LabelNiece  Label = "Niece"
	LabelNephew Label = "Nephew"
	LabelAunt   Label = "Aunt"
	LabelUncle  Label = "Uncle"

	LabelCousin Label = "Cousin"
)

// Gendered picks the female or male form by g.
func Gendered(g Gender, female, male Label) Label {
	if g == GenderFemale {
		return female
	}
	return male
}
