// pkg/core/entity.go
package core

import "fmt"

// Kind is the category of a map or simulation object.
type Kind uint8

const (
	KindBuilding Kind = iota
	KindLane
	KindIntersection
	KindCar
	KindPedestrian
)

var kindNames = map[Kind]string{
	KindBuilding:     "building",
	KindLane:         "lane",
	KindIntersection: "intersection",
	KindCar:          "car",
	KindPedestrian:   "pedestrian",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindFromString parses the scenario/config spelling of a kind.
func KindFromString(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// IsAgent reports whether objects of this kind move on their own.
func (k Kind) IsAgent() bool {
	return k == KindCar || k == KindPedestrian
}

// ID identifies exactly one map or simulation object. It is comparable and
// can be used as a map key (color overrides, hidden sets).
type ID struct {
	Kind  Kind
	Index uint32
}

func BuildingID(i uint32) ID     { return ID{Kind: KindBuilding, Index: i} }
func LaneID(i uint32) ID         { return ID{Kind: KindLane, Index: i} }
func IntersectionID(i uint32) ID { return ID{Kind: KindIntersection, Index: i} }
func CarID(i uint32) ID          { return ID{Kind: KindCar, Index: i} }
func PedestrianID(i uint32) ID   { return ID{Kind: KindPedestrian, Index: i} }

func (id ID) String() string {
	return fmt.Sprintf("%s %d", id.Kind, id.Index)
}

// AgentID returns the agent view of the ID when it refers to a moving agent.
func (id ID) AgentID() (AgentID, bool) {
	if !id.Kind.IsAgent() {
		return AgentID{}, false
	}
	return AgentID{Kind: id.Kind, Index: id.Index}, true
}

// AgentID identifies a car or pedestrian.
type AgentID struct {
	Kind  Kind
	Index uint32
}

// ID converts the agent back to a generic object ID.
func (a AgentID) ID() ID {
	return ID{Kind: a.Kind, Index: a.Index}
}

func (a AgentID) String() string {
	return fmt.Sprintf("%s %d", a.Kind, a.Index)
}

// TripID identifies a journey. It is distinct from the agent currently
// carrying it.
type TripID uint32

func (t TripID) String() string {
	return fmt.Sprintf("trip %d", uint32(t))
}
