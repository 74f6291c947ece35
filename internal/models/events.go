package models

// Event names delivered on the push channel.
const (
	EventContainerUpdated = "container_updated"
	EventLocationUpdated  = "location_updated"
)

// ContainerUpdate is the payload of a container_updated event: the changed
// container plus the owning location with its freshly recomputed status. The
// location carries at least id and status; clients overwrite their cached
// location status with it.
type ContainerUpdate struct {
	Container Container `json:"container"`
	Location  Location  `json:"location"`
}
