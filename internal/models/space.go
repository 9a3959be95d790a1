package models

import "fmt"

type SpaceKind int

const (
	SpaceKindBuilding SpaceKind = iota
	SpaceKindLand
)

func (k SpaceKind) String() string {
	switch k {
	case SpaceKindBuilding:
		return "building"
	case SpaceKindLand:
		return "land"
	default:
		return "unknown"
	}
}

// SpaceRef points at one rentable entry inside a property document. Exactly
// one of Building / Land is set, matching Kind. FloorIndex is -1 for land.
type SpaceRef struct {
	Kind       SpaceKind
	FloorIndex int
	Index      int
	Building   *BuildingSpace
	Land       *Squatter
}

func (s SpaceRef) ID() string {
	if s.Kind == SpaceKindLand {
		return s.Land.SquatterID
	}
	return s.Building.SpaceID
}

func (s SpaceRef) Name() string {
	if s.Kind == SpaceKindLand {
		if s.Land.SquatterName != "" {
			return s.Land.SquatterName
		}
		return s.Land.AssignedArea
	}
	return s.Building.SpaceName
}

// Rent is the authoritative monthly amount: monthlyRent for building spaces,
// monthlyPayment for squatters.
func (s SpaceRef) Rent() float64 {
	if s.Kind == SpaceKindLand {
		return s.Land.MonthlyPayment.Float64()
	}
	return s.Building.MonthlyRent.Float64()
}

func (s SpaceRef) Status() SpaceStatus {
	if s.Kind == SpaceKindLand {
		return s.Land.Status
	}
	return s.Building.Status
}

// FieldPath returns the dotted document path of a field on this entry, e.g.
// "buildingDetails.floors.0.spaces.2.status". Logical field names "rent" and
// "name" are mapped onto the variant's own keys.
func (s SpaceRef) FieldPath(field string) string {
	if s.Kind == SpaceKindLand {
		switch field {
		case "rent":
			field = "monthlyPayment"
		case "name":
			field = "squatterName"
		}
		return fmt.Sprintf("landDetails.squatters.%d.%s", s.Index, field)
	}
	switch field {
	case "rent":
		field = "monthlyRent"
	case "name":
		field = "spaceName"
	}
	return fmt.Sprintf("buildingDetails.floors.%d.spaces.%d.%s", s.FloorIndex, s.Index, field)
}

// ResolveSpace finds the entry whose id equals spaceID. Building floors and
// spaces are scanned in array order and the first match wins; duplicate ids
// are reported separately by DuplicateSpaceIDs.
func ResolveSpace(p *Property, spaceID string) (SpaceRef, bool) {
	if p == nil || spaceID == "" {
		return SpaceRef{}, false
	}
	switch p.Type {
	case PropertyTypeLand:
		if p.LandDetails == nil {
			return SpaceRef{}, false
		}
		for i := range p.LandDetails.Squatters {
			if p.LandDetails.Squatters[i].SquatterID == spaceID {
				return SpaceRef{Kind: SpaceKindLand, FloorIndex: -1, Index: i, Land: &p.LandDetails.Squatters[i]}, true
			}
		}
	default:
		if p.BuildingDetails == nil {
			return SpaceRef{}, false
		}
		for fi := range p.BuildingDetails.Floors {
			floor := &p.BuildingDetails.Floors[fi]
			for si := range floor.Spaces {
				if floor.Spaces[si].SpaceID == spaceID {
					return SpaceRef{Kind: SpaceKindBuilding, FloorIndex: fi, Index: si, Building: &floor.Spaces[si]}, true
				}
			}
		}
	}
	return SpaceRef{}, false
}

// Spaces lists every entry of the property in document order.
func Spaces(p *Property) []SpaceRef {
	var out []SpaceRef
	if p == nil {
		return out
	}
	if p.Type == PropertyTypeLand {
		if p.LandDetails != nil {
			for i := range p.LandDetails.Squatters {
				out = append(out, SpaceRef{Kind: SpaceKindLand, FloorIndex: -1, Index: i, Land: &p.LandDetails.Squatters[i]})
			}
		}
		return out
	}
	if p.BuildingDetails != nil {
		for fi := range p.BuildingDetails.Floors {
			for si := range p.BuildingDetails.Floors[fi].Spaces {
				out = append(out, SpaceRef{Kind: SpaceKindBuilding, FloorIndex: fi, Index: si, Building: &p.BuildingDetails.Floors[fi].Spaces[si]})
			}
		}
	}
	return out
}

// DuplicateSpaceIDs returns ids that appear more than once in the property.
func DuplicateSpaceIDs(p *Property) []string {
	seen := map[string]int{}
	var dups []string
	for _, s := range Spaces(p) {
		id := s.ID()
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
