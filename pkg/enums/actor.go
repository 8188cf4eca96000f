package enums

import "fmt"

// ActorKind tags who performed an action: an admin or a sales rep.
type ActorKind string

const (
	ActorAdmin ActorKind = "admin"
	ActorRep   ActorKind = "rep"
)

func (k ActorKind) String() string {
	return string(k)
}

func (k ActorKind) IsValid() bool {
	return k == ActorAdmin || k == ActorRep
}

func ParseActorKind(value string) (ActorKind, error) {
	k := ActorKind(value)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid actor kind %q", value)
	}
	return k, nil
}
