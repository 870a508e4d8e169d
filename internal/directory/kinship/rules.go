package kinship

import (
	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
)

// pair is the resolved neighbourhood of a viewer and a target.
type pair struct {
	snap          *snapshot
	viewer        *models.Person
	target        *models.Person
	viewerParents []*models.Person
	targetParents []*models.Person
}

type rule func(p *pair) models.Label

// nearRules only need the two persons and their parents.
var nearRules = []rule{
	parentRule,
	childRule,
	siblingInLawRule,
	siblingRule,
}

// extendedRules also need grandparents loaded.
var extendedRules = []rule{
	grandparentRule,
	grandchildRule,
	nieceNephewRule,
	auntUncleRule,
	cousinRule,
}

func resolvedParent(parents []*models.Person, pid id.PersonID) bool {
	for _, p := range parents {
		if p.ID == pid {
			return true
		}
	}
	return false
}

// parentRule: target is one of viewer's parents.
func parentRule(p *pair) models.Label {
	if !resolvedParent(p.viewerParents, p.target.ID) {
		return models.LabelNone
	}
	kind, _ := p.viewer.KindOf(p.target.ID)
	g := p.target.Gender
	switch kind {
	case models.KindInLaw:
		return models.Gendered(g, models.LabelMotherInLaw, models.LabelFatherInLaw)
	case models.KindBiological:
		return models.Gendered(g, models.LabelMother, models.LabelFather)
	default:
		return models.Gendered(g, models.LabelStepmother, models.LabelStepfather)
	}
}

// childRule: viewer is one of target's parents.
func childRule(p *pair) models.Label {
	if !resolvedParent(p.targetParents, p.viewer.ID) {
		return models.LabelNone
	}
	kind, _ := p.target.KindOf(p.viewer.ID)
	g := p.target.Gender
	switch kind {
	case models.KindInLaw:
		return models.Gendered(g, models.LabelDaughterInLaw, models.LabelSonInLaw)
	case models.KindBiological:
		return models.Gendered(g, models.LabelDaughter, models.LabelSon)
	default:
		return models.Gendered(g, models.LabelStepdaughter, models.LabelStepson)
	}
}

// siblingInLawRule: target holds one of viewer's parents as an in-law
// parent, so target married viewer's (step-)sibling. A biological link on
// the viewer side wins over a step link.
func siblingInLawRule(p *pair) models.Label {
	var viaBiological, viaStep bool
	for _, vp := range p.viewerParents {
		if !hasLink(p.target, vp.ID, models.KindInLaw) {
			continue
		}
		if hasLink(p.viewer, vp.ID, models.KindBiological) {
			viaBiological = true
		} else {
			viaStep = true
		}
	}
	g := p.target.Gender
	switch {
	case viaBiological:
		return models.Gendered(g, models.LabelSisterInLaw, models.LabelBrotherInLaw)
	case viaStep:
		return models.Gendered(g, models.LabelStepSisterInLaw, models.LabelStepBrotherInLaw)
	default:
		return models.LabelNone
	}
}

// siblingRule: viewer and target share a parent through links of the same
// kind. Biological siblings are checked before step siblings.
func siblingRule(p *pair) models.Label {
	g := p.target.Gender
	if sharesParentWithKind(p, models.KindBiological) {
		return models.Gendered(g, models.LabelSister, models.LabelBrother)
	}
	if sharesParentWithKind(p, models.KindStep) {
		return models.Gendered(g, models.LabelStepsister, models.LabelStepbrother)
	}
	return models.LabelNone
}

func sharesParentWithKind(p *pair, kind models.ParentKind) bool {
	for _, vp := range p.viewerParents {
		if !resolvedParent(p.targetParents, vp.ID) {
			continue
		}
		if hasLink(p.viewer, vp.ID, kind) && hasLink(p.target, vp.ID, kind) {
			return true
		}
	}
	return false
}

// hasLink reports whether either parent slot of child points at parentID
// with the given kind.
func hasLink(child *models.Person, parentID id.PersonID, kind models.ParentKind) bool {
	if child.Mother != nil && child.Mother.ID == parentID && child.Mother.Kind == kind {
		return true
	}
	return child.Father != nil && child.Father.ID == parentID && child.Father.Kind == kind
}

// grandparentRule: target is a parent of one of viewer's parents.
func grandparentRule(p *pair) models.Label {
	for _, vp := range p.viewerParents {
		if resolvedParent(p.snap.parentsOf(vp), p.target.ID) {
			return models.Gendered(p.target.Gender, models.LabelGrandmother, models.LabelGrandfather)
		}
	}
	return models.LabelNone
}

// grandchildRule: viewer is a parent of one of target's parents.
func grandchildRule(p *pair) models.Label {
	for _, tp := range p.targetParents {
		if resolvedParent(p.snap.parentsOf(tp), p.viewer.ID) {
			return models.Gendered(p.target.Gender, models.LabelGranddaughter, models.LabelGrandson)
		}
	}
	return models.LabelNone
}

// nieceNephewRule: one of target's parents shares a parent with viewer.
func nieceNephewRule(p *pair) models.Label {
	for _, tp := range p.targetParents {
		if sharesAny(p.snap.parentsOf(tp), p.viewerParents) {
			return models.Gendered(p.target.Gender, models.LabelNiece, models.LabelNephew)
		}
	}
	return models.LabelNone
}

// auntUncleRule: one of viewer's parents shares a parent with target.
func auntUncleRule(p *pair) models.Label {
	for _, vp := range p.viewerParents {
		if sharesAny(p.snap.parentsOf(vp), p.targetParents) {
			return models.Gendered(p.target.Gender, models.LabelAunt, models.LabelUncle)
		}
	}
	return models.LabelNone
}

// cousinRule: a viewer parent and a distinct target parent share a parent.
// A parent common to both is skipped; that pair is a half or mixed-kind
// sibling pair, not cousins.
func cousinRule(p *pair) models.Label {
	for _, vp := range p.viewerParents {
		vpParents := p.snap.parentsOf(vp)
		for _, tp := range p.targetParents {
			if vp.ID == tp.ID {
				continue
			}
			if sharesAny(vpParents, p.snap.parentsOf(tp)) {
				return models.LabelCousin
			}
		}
	}
	return models.LabelNone
}

func sharesAny(a, b []*models.Person) bool {
	for _, x := range a {
		if resolvedParent(b, x.ID) {
			return true
		}
	}
	return false
}
