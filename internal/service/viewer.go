package service

import "github.com/andresmiguel12354-maker/EggsWeb/internal/model"

// Viewer exposes the signed-in profile to view modules. The session
// controller owns the concrete state; services only read it.
type Viewer interface {
	Me() *model.Profile
	MeID() string
}
