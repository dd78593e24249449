package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               string `json:"id" db:"id"`
	Email            string `json:"email" db:"email"`
	Password         string `json:"-" db:"password"` // Never return password in JSON
	Name             string `json:"name" db:"name"`
	Role             string `json:"role" db:"role"` // "user" or "admin"
	ApplicationID    string `json:"application_id" db:"application_id"`
	SubscriptionPlan string `json:"subscription_plan" db:"subscription_plan"`
	NotificationPreferences
	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// NotificationPreferences holds channel toggles and contact overrides.
type NotificationPreferences struct {
	NotifyEmail       bool   `json:"notify_email" db:"notify_email"`
	NotifySMS         bool   `json:"notify_sms" db:"notify_sms"`
	NotifyWhatsApp    bool   `json:"notify_whatsapp" db:"notify_whatsapp"`
	NotifyPush        bool   `json:"notify_push" db:"notify_push"`
	NotificationEmail string `json:"notification_email" db:"notification_email"`
	Phone             string `json:"phone" db:"phone"`
	WhatsAppNumber    string `json:"whatsapp_number" db:"whatsapp_number"`
}

type UserResponse struct {
	ID               string                  `json:"id"`
	Email            string                  `json:"email"`
	Name             string                  `json:"name"`
	Role             string                  `json:"role"`
	ApplicationID    string                  `json:"application_id"`
	SubscriptionPlan string                  `json:"subscription_plan"`
	Notifications    NotificationPreferences `json:"notifications"`
	CreatedAt        int64                   `json:"created_at"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		ApplicationID:    u.ApplicationID,
		SubscriptionPlan: u.SubscriptionPlan,
		Notifications:    u.NotificationPreferences,
		CreatedAt:        u.CreatedAt,
	}
}

// UpdateProfileRequest is the request body for PUT /auth/me
type UpdateProfileRequest struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	ApplicationID     *string `json:"application_id,omitempty"`
	SubscriptionPlan  *string `json:"subscription_plan,omitempty"`
	NotifyEmail       *bool   `json:"notify_email,omitempty"`
	NotifySMS         *bool   `json:"notify_sms,omitempty"`
	NotifyWhatsApp    *bool   `json:"notify_whatsapp,omitempty"`
	NotifyPush        *bool   `json:"notify_push,omitempty"`
	NotificationEmail *string `json:"notification_email,omitempty" validate:"omitempty,email"`
	Phone             *string `json:"phone,omitempty"`
	WhatsAppNumber    *string `json:"whatsapp_number,omitempty"`
}

// Apply copies every non-nil field onto u.
func (r *UpdateProfileRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.ApplicationID != nil {
		u.ApplicationID = *r.ApplicationID
	}
	if r.SubscriptionPlan != nil {
		u.SubscriptionPlan = *r.SubscriptionPlan
	}
	if r.NotifyEmail != nil {
		u.NotifyEmail = *r.NotifyEmail
	}
	if r.NotifySMS != nil {
		u.NotifySMS = *r.NotifySMS
	}
	if r.NotifyWhatsApp != nil {
		u.NotifyWhatsApp = *r.NotifyWhatsApp
	}
	if r.NotifyPush != nil {
		u.NotifyPush = *r.NotifyPush
	}
	if r.NotificationEmail != nil {
		u.NotificationEmail = *r.NotificationEmail
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	if r.WhatsAppNumber != nil {
		u.WhatsAppNumber = *r.WhatsAppNumber
	}
}

// FCMToken is a registered push target for a user.
type FCMToken struct {
	ID         string `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"` // 'ios', 'android' or 'web'
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}
