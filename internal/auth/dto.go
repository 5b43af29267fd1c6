package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DeviceTokenDTO requests a long-lived token for a piece of field hardware.
type DeviceTokenDTO struct {
	DeviceID string `json:"device_id"`
}

// APIKeyDTO requests an API key embedding a permission snapshot for a user.
type APIKeyDTO struct {
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d DeviceTokenDTO) Validate() error {
	if d.DeviceID == "" {
		return ValidationError{Msg: "device_id is required"}
	}
	return nil
}

func (d APIKeyDTO) Validate() error {
	if d.UserID == "" {
		return ValidationError{Msg: "user_id is required"}
	}
	if len(d.Permissions) == 0 {
		return ValidationError{Msg: "at least one permission is required"}
	}
	return nil
}

// PermissionList converts the raw strings into typed permissions.
func (d APIKeyDTO) PermissionList() []Permission {
	perms := make([]Permission, len(d.Permissions))
	for i, p := range d.Permissions {
		perms[i] = Permission(p)
	}
	return perms
}
