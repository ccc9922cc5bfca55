package genart

import "fmt"

// TraitLink forces TargetLayer to TargetTrait whenever SourceLayer resolved
// to SourceTrait.
type TraitLink struct {
	SourceLayer int `json:"source_layer"`
	SourceTrait int `json:"source_trait"`
	TargetLayer int `json:"target_layer"`
	TargetTrait int `json:"target_trait"`
}

func (l TraitLink) Validate(numLayers int) error {
	if l.SourceLayer < 0 || l.SourceLayer >= numLayers {
		return fmt.Errorf("source layer %d out of range", l.SourceLayer)
	}
	if l.TargetLayer < 0 || l.TargetLayer >= numLayers {
		return fmt.Errorf("target layer %d out of range", l.TargetLayer)
	}
	if l.SourceLayer == l.TargetLayer {
		return fmt.Errorf("link source and target are both layer %d", l.SourceLayer)
	}
	if l.SourceTrait < 0 || l.SourceTrait >= MaxTraitsPerLayer {
		return fmt.Errorf("source trait %d out of range", l.SourceTrait)
	}
	if l.TargetTrait < 0 || l.TargetTrait >= MaxTraitsPerLayer {
		return fmt.Errorf("target trait %d out of range", l.TargetTrait)
	}
	return nil
}

// ApplyLinks rewrites hash according to links, in order. Each rule sees the
// hash as left by the previous ones, so when several rules hit the same
// target layer the last one wins.
func ApplyLinks(hash string, links []TraitLink) (string, error) {
	for _, link := range links {
		source, err := TraitIndexAt(hash, link.SourceLayer)
		if err != nil {
			return "", err
		}
		if source != link.SourceTrait {
			continue
		}
		if hash, err = SetTraitIndex(hash, link.TargetLayer, link.TargetTrait); err != nil {
			return "", err
		}
	}
	return hash, nil
}
