package domain

// DeviceInfo is the push-delivery subset of a user profile.
type DeviceInfo struct {
	Token    string `json:"token"`
	IsActive bool   `json:"isActive"`
}

// User is the read-only view of a user profile needed for delivery.
type User struct {
	ID         string      `json:"id"`
	DeviceInfo *DeviceInfo `json:"deviceInfo,omitempty"`
}

// PushToken returns the deliverable token, or false when the user has no
// active device.
func (u *User) PushToken() (string, bool) {
	if u == nil || u.DeviceInfo == nil || !u.DeviceInfo.IsActive || u.DeviceInfo.Token == "" {
		return "", false
	}
	return u.DeviceInfo.Token, true
}
