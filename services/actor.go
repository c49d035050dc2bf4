package services

import "github.com/sahilchouksey/scholarhub/model"

// Actor is the authenticated caller as established by the auth middleware.
// Services never look at tokens, only at this pair.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// CanManage reports whether the actor may edit content owned by ownerID
func (a Actor) CanManage(ownerID uint) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
